package core

// Task is a piece of foreground work due at WakeTime (system ticks).
// Tasks run from the main loop, never from a handler, so a task may block.
type Task struct {
	WakeTime uint32
	Handler  func(*Task) uint8
	Next     *Task
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler is a sorted list of foreground tasks
type Scheduler struct {
	tasks *Task
}

// Schedule adds a task in WakeTime order
func (s *Scheduler) Schedule(t *Task) {
	if s.tasks == nil || !TimeReached(s.tasks.WakeTime, t.WakeTime) {
		t.Next = s.tasks
		s.tasks = t
		return
	}

	current := s.tasks
	for current.Next != nil && TimeReached(current.Next.WakeTime, t.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Every schedules f to run every period ticks, the first time one period
// from now. f returns false to stop.
func (s *Scheduler) Every(period uint32, f func(now uint32) bool) *Task {
	t := &Task{
		WakeTime: GetTime() + period,
		Handler: func(t *Task) uint8 {
			if !f(t.WakeTime) {
				return SF_DONE
			}
			t.WakeTime += period
			return SF_RESCHEDULE
		},
	}
	s.Schedule(t)
	return t
}

// Pending returns the number of scheduled tasks
func (s *Scheduler) Pending() int {
	n := 0
	for t := s.tasks; t != nil; t = t.Next {
		n++
	}
	return n
}

// Dispatch runs every task whose WakeTime has been reached at now
func (s *Scheduler) Dispatch(now uint32) {
	for s.tasks != nil && TimeReached(s.tasks.WakeTime, now) {
		task := s.tasks
		s.tasks = task.Next
		task.Next = nil

		if task.Handler(task) == SF_RESCHEDULE {
			s.Schedule(task)
		}
	}
}
