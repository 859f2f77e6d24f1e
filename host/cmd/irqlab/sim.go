package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"irqlab/config"
	"irqlab/core"
	"irqlab/demo"
	"irqlab/report"
)

var (
	simOpts = struct {
		duration uint32
		frames   string
		mqtt     bool
	}{}

	simCmd = &cobra.Command{
		Use:   "sim [demo]",
		Short: "Run a demo on the simulated board",
		Long:  "Run a demo on the simulated board for a span of simulated time and log its counter reports.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Sim.Demo = args[0]
			}
			if simOpts.duration != 0 {
				cfg.Sim.Duration = simOpts.duration
			}
			return runSim(cfg)
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the demos",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demo.Names() {
				fmt.Println(name)
			}
		},
	}
)

func init() {
	simCmd.Flags().Uint32VarP(&simOpts.duration, "duration", "d", 0, "Simulated run time in ms. Default: sim.duration_ms")
	simCmd.Flags().StringVarP(&simOpts.frames, "frames", "f", "", "Also write report frames to this file")
	simCmd.Flags().BoolVar(&simOpts.mqtt, "mqtt", false, "Publish reports to the configured broker")
}

func debounceMode(cfg *config.Config) core.DebounceMode {
	if cfg.Debounce.Mode == "coarse" {
		return core.DebounceCoarse
	}
	return core.DebounceConfirmed
}

// buildReporter combines the log reporter with the optional frame file and
// MQTT publisher. The returned close function releases both.
func buildReporter(cfg *config.Config, framesPath string, useMQTT bool, clockHz uint32) (report.Reporter, func(), error) {
	reporters := report.Multi{report.Log{}}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if framesPath != "" {
		f, err := os.Create(framesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("create frames file: %w", err)
		}
		closers = append(closers, func() { f.Close() })
		frames, err := report.NewFrames(f, clockHz)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("write hello frame: %w", err)
		}
		reporters = append(reporters, frames)
	}

	if useMQTT {
		if cfg.MQTT.Broker == "" {
			closeAll()
			return nil, nil, fmt.Errorf("mqtt: no broker configured")
		}
		pub, err := report.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("mqtt: %w", err)
		}
		log.Printf("Publishing to %s", cfg.MQTT.Broker)
		closers = append(closers, func() { pub.Close() })
		reporters = append(reporters, pub)
	}
	return reporters, closeAll, nil
}

func runSim(cfg *config.Config) error {
	d, err := demo.New(cfg.Sim.Demo)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Sim.Demo, err)
	}

	s, err := demo.NewSimBoard(demo.SimOptions{
		Clock:    core.ClockConfig{HSEHz: 8_000_000, PLLMul: cfg.Sim.ClockHz / 8_000_000},
		PollCost: cfg.Sim.PollCost,
	})
	if err != nil {
		return fmt.Errorf("board bring-up: %w", err)
	}
	defer s.Close()

	rep, closeReporter, err := buildReporter(cfg, simOpts.frames, simOpts.mqtt, s.Board.ClockHz)
	if err != nil {
		return err
	}
	defer closeReporter()
	s.Board.Report = rep
	s.Board.Debounce = debounceMode(cfg)
	s.Board.DebounceSettleMs = cfg.Debounce.SettleMs
	s.Board.DebouncePollMs = cfg.Debounce.PollMs

	if verbose {
		core.SetDebugWriter(func(msg string) { log.Print(msg) })
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}

	log.Printf("Running %s on a simulated %d MHz board for %d ms", cfg.Sim.Demo, s.Board.ClockHz/1_000_000, cfg.Sim.Duration)
	if err := d.Setup(s.Board); err != nil {
		return fmt.Errorf("setup %s: %w", cfg.Sim.Demo, err)
	}

	end := s.M.Now() + s.M.Cycles(uint64(cfg.Sim.Duration)*1000)
	for s.M.Now() < end {
		if err := d.Step(s.Board); err != nil {
			log.Printf("step: %v", err)
		}
	}

	if core.IsDebugEnabled() {
		core.DumpTimingRing()
	}
	log.Printf("Done at cycle %d", s.M.Now())
	return nil
}
