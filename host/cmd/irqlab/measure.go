package main

import (
	"fmt"
	"log"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"irqlab/config"
	"irqlab/core"
	"irqlab/demo"
)

var (
	measureOpts = struct {
		rate    uint32
		periods int
		latency uint32
	}{}

	measureCmd = &cobra.Command{
		Use:   "measure",
		Short: "Measure the periodic timer on the simulated board",
		Long:  "Run TIM2 at a rate on the simulated board, timestamp every tick handler and report the mean and spread of the measured periods.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if measureOpts.rate != 0 {
				cfg.Measure.RateHz = measureOpts.rate
			}
			if measureOpts.periods != 0 {
				cfg.Measure.Periods = measureOpts.periods
			}

			res, err := measure(cfg, measureOpts.latency)
			if err != nil {
				return err
			}
			log.Printf("TIM2 prescaler %d reload %d", res.Prescaler, res.Reload)
			log.Printf("%d periods: mean %.3f us, stddev %.3f us, expected %.3f us",
				res.Periods, res.MeanUs, res.StdDevUs, res.ExpectedUs)
			log.Printf("rate error %.1f ppm, %d ticks missed", res.ErrorPPM(), res.Missed)
			if !res.WithinOneTick() {
				return fmt.Errorf("measured %d ticks, expected %d +- 1", res.Ticks, res.Periods)
			}
			return nil
		},
	}
)

func init() {
	measureCmd.Flags().Uint32VarP(&measureOpts.rate, "rate", "r", 0, "Tick rate in Hz. Default: measure.rate_hz")
	measureCmd.Flags().IntVarP(&measureOpts.periods, "periods", "n", 0, "Number of periods. Default: measure.periods")
	measureCmd.Flags().Uint32Var(&measureOpts.latency, "hold-us", 0, "Hold a critical section this long every 10 ms to add latency")
}

// measurement is the result of one timer run
type measurement struct {
	Prescaler  uint32
	Reload     uint32
	Periods    int
	Ticks      uint32
	Missed     uint32
	MeanUs     float64
	StdDevUs   float64
	ExpectedUs float64
}

// ErrorPPM is the relative error of the mean period
func (m measurement) ErrorPPM() float64 {
	if m.ExpectedUs == 0 {
		return 0
	}
	return (m.MeanUs - m.ExpectedUs) / m.ExpectedUs * 1e6
}

// WithinOneTick reports whether the tick count over the run is within one
// of the number of elapsed periods
func (m measurement) WithinOneTick() bool {
	return math.Abs(float64(m.Ticks)-float64(m.Periods)) <= 1
}

// measure runs TIM2 for cfg.Measure.Periods periods and timestamps each tick
// handler in core cycles. holdUs > 0 holds a critical section for that long
// every 10 ms to show the jitter added by a busy foreground.
func measure(cfg *config.Config, holdUs uint32) (measurement, error) {
	s, err := demo.NewSimBoard(demo.SimOptions{
		Clock:    core.ClockConfig{HSEHz: 8_000_000, PLLMul: cfg.Sim.ClockHz / 8_000_000},
		PollCost: cfg.Sim.PollCost,
	})
	if err != nil {
		return measurement{}, err
	}
	defer s.Close()

	d := &demo.TickCounter{RateHz: cfg.Measure.RateHz}
	if err := d.Setup(s.Board); err != nil {
		return measurement{}, err
	}

	var stamps []float64
	d.Timer.OnTick = func(tok core.Token, tick uint32) {
		stamps = append(stamps, float64(s.M.Now()))
	}

	p, r := d.Timer.Settings()
	periodCycles := uint64(p) * uint64(r)
	total := periodCycles * uint64(cfg.Measure.Periods)
	end := s.M.Now() + total
	if holdUs == 0 {
		s.M.Advance(total)
	} else {
		step := s.M.Cycles(10_000)
		hold := s.M.Cycles(uint64(holdUs))
		for s.M.Now()+step+hold <= end {
			s.M.Advance(step)
			core.WithExclusive(func(tok core.Token) {
				s.M.Advance(hold)
			})
		}
		s.M.Advance(end - s.M.Now())
	}

	res := measurement{
		Prescaler:  p,
		Reload:     r,
		Periods:    cfg.Measure.Periods,
		Ticks:      d.Timer.Ticks.Read(),
		Missed:     d.Timer.Ticks.Missed(),
		ExpectedUs: float64(periodCycles) * 1e6 / float64(s.Board.ClockHz),
	}
	if len(stamps) < 2 {
		return res, fmt.Errorf("only %d ticks captured", len(stamps))
	}

	periods := make([]float64, len(stamps)-1)
	usPerCycle := 1e6 / float64(s.Board.ClockHz)
	for i := 1; i < len(stamps); i++ {
		periods[i-1] = (stamps[i] - stamps[i-1]) * usPerCycle
	}
	res.MeanUs, res.StdDevUs = stat.MeanStdDev(periods, nil)
	return res, nil
}
