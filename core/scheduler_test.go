package core

import "testing"

func TestTimeReachedAcrossWrap(t *testing.T) {
	testCases := []struct {
		deadline, now uint32
		want          bool
	}{
		{100, 99, false},
		{100, 100, true},
		{100, 101, true},
		{0xFFFFFFF0, 0x10, true},
		{0x10, 0xFFFFFFF0, false},
	}

	for _, tc := range testCases {
		if got := TimeReached(tc.deadline, tc.now); got != tc.want {
			t.Errorf("TimeReached(%#x, %#x) = %v, want %v", tc.deadline, tc.now, got, tc.want)
		}
	}
}

func TestSchedulerDispatchOrder(t *testing.T) {
	var s Scheduler
	var ran []int
	add := func(id int, wake uint32) {
		s.Schedule(&Task{
			WakeTime: wake,
			Handler: func(*Task) uint8 {
				ran = append(ran, id)
				return SF_DONE
			},
		})
	}
	add(3, 30)
	add(1, 10)
	add(2, 20)
	add(4, 20)

	s.Dispatch(15)
	if len(ran) != 1 || ran[0] != 1 {
		t.Fatalf("ran = %v at 15, want [1]", ran)
	}
	s.Dispatch(30)
	want := []int{1, 2, 4, 3}
	for i := range want {
		if i >= len(ran) || ran[i] != want[i] {
			t.Fatalf("ran = %v, want %v", ran, want)
		}
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSchedulerEvery(t *testing.T) {
	var s Scheduler
	start := GetTime()
	var fired []uint32
	s.Every(100, func(now uint32) bool {
		fired = append(fired, now-start)
		return len(fired) < 3
	})

	for now := start; now <= start+500; now += 10 {
		s.Dispatch(now)
	}
	want := []uint32{100, 200, 300}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("run %d at +%d, want +%d", i, fired[i], want[i])
		}
	}
	if s.Pending() != 0 {
		t.Errorf("stopped task still scheduled")
	}
}

func TestTickDelay(t *testing.T) {
	idles := 0
	d := TickDelay{Idle: func() {
		idles++
		WithExclusive(func(tok Token) { AdvanceTime(tok) })
	}}

	start := GetTime()
	d.DelayMs(25)
	if n := TimeSince(start); n != 25 {
		t.Errorf("TimeSince = %d, want 25", n)
	}
	if idles != 25 {
		t.Errorf("idle ran %d times, want 25", idles)
	}
}
