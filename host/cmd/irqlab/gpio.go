//go:build linux

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warthog618/go-gpiocdev"

	"irqlab/config"
	"irqlab/core"
	"irqlab/demo"
	gpiocdevhal "irqlab/hal/gpiocdev"
	"irqlab/hal/periph"
)

var (
	gpioOpts = struct {
		backend string
		mqtt    bool
	}{}

	gpioCmd = &cobra.Command{
		Use:   "gpio [demo]",
		Short: "Run a GPIO demo on Linux hardware",
		Long:  "Run blinky, flow, key, exti-key or ir on the GPIO lines named in the configuration. Edge demos need the gpiocdev backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if gpioOpts.backend != "" {
				cfg.GPIO.Backend = gpioOpts.backend
			}
			return runGPIO(cfg, args[0])
		},
	}
)

func init() {
	gpioCmd.Flags().StringVar(&gpioOpts.backend, "backend", "", "gpiocdev or periph. Default: gpio.backend")
	gpioCmd.Flags().BoolVar(&gpioOpts.mqtt, "mqtt", false, "Publish reports to the configured broker")
	rootCmd.AddCommand(gpioCmd)
}

// unusedPin stands in for LEDs the configuration leaves out
type unusedPin struct{ level core.Level }

func (p *unusedPin) Configure(core.Direction, core.Pull) error { return nil }

func (p *unusedPin) Read() core.Level { return p.level }

func (p *unusedPin) Write(l core.Level) { p.level = l }

// lineBoard opens the configured lines through the chosen backend
type lineBoard struct {
	board   *demo.Board
	closers []func() error
}

func (lb *lineBoard) Close() {
	for i := len(lb.closers) - 1; i >= 0; i-- {
		if err := lb.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

func openGPIOBoard(cfg *config.Config) (*lineBoard, error) {
	lb := &lineBoard{board: &demo.Board{
		Delay:            periph.Sleep{},
		Debounce:         debounceMode(cfg),
		DebounceSettleMs: cfg.Debounce.SettleMs,
		DebouncePollMs:   cfg.Debounce.PollMs,
	}}
	for i := range lb.board.LEDs {
		lb.board.LEDs[i] = &unusedPin{}
	}

	switch cfg.GPIO.Backend {
	case "periph":
		open := func(name string) (core.Pin, error) {
			if name == "" {
				return nil, nil
			}
			p, err := periph.Open(name)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
		for i, name := range cfg.GPIO.LEDs {
			p, err := open(name)
			if err != nil {
				return nil, err
			}
			if p != nil {
				lb.board.LEDs[i] = p
			}
		}
		var err error
		if lb.board.Key, err = open(cfg.GPIO.Key); err != nil {
			return nil, err
		}
		if lb.board.IR, err = open(cfg.GPIO.IR); err != nil {
			return nil, err
		}
		return lb, nil

	case "gpiocdev":
		chip, err := gpiocdev.NewChip(cfg.GPIO.Chip)
		if err != nil {
			return nil, fmt.Errorf("open gpio chip: %w", err)
		}
		lb.closers = append(lb.closers, chip.Close)

		open := func(name string) (*gpiocdevhal.Pin, error) {
			if name == "" {
				return nil, nil
			}
			offset, err := strconv.Atoi(name)
			if err != nil {
				return nil, fmt.Errorf("line %q: want an offset on %s", name, cfg.GPIO.Chip)
			}
			p := gpiocdevhal.NewPin(chip, offset)
			lb.closers = append(lb.closers, p.Close)
			return p, nil
		}
		for i, name := range cfg.GPIO.LEDs {
			p, err := open(name)
			if err != nil {
				lb.Close()
				return nil, err
			}
			if p != nil {
				lb.board.LEDs[i] = p
			}
		}
		key, err := open(cfg.GPIO.Key)
		if err != nil {
			lb.Close()
			return nil, err
		}
		if key != nil {
			lb.board.Key = key
		}

		ctrl := gpiocdevhal.NewController(chip)
		lb.closers = append(lb.closers, ctrl.Close)
		lb.board.IC = ctrl
		lb.board.Connect = ctrl.Connect
		lb.board.Edge = &core.SharedCell[core.EdgeHW]{}
		lb.board.Edge.Publish(ctrl)

		// edge demos watch the lines instead of reading them as plain inputs
		watch := func(name string, line core.Line, irq core.IRQ) error {
			if name == "" {
				return nil
			}
			offset, err := strconv.Atoi(name)
			if err != nil {
				return fmt.Errorf("line %q: want an offset on %s", name, cfg.GPIO.Chip)
			}
			return ctrl.Watch(line, offset, core.PullUp, irq)
		}
		if err := watch(cfg.GPIO.IR, demo.LineIR, demo.IRQEXTI15_10); err != nil {
			lb.Close()
			return nil, err
		}
		lb.board.IR = &unusedPin{level: core.High}
		return lb, nil
	}
	return nil, fmt.Errorf("gpio backend %q", cfg.GPIO.Backend)
}

func runGPIO(cfg *config.Config, name string) error {
	d, err := demo.New(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	lb, err := openGPIOBoard(cfg)
	if err != nil {
		return err
	}
	defer lb.Close()

	if name == "exti-key" {
		ctrl, ok := lb.board.IC.(*gpiocdevhal.Controller)
		if !ok {
			return fmt.Errorf("%s needs the gpiocdev backend", name)
		}
		offset, err := strconv.Atoi(cfg.GPIO.Key)
		if err != nil {
			return fmt.Errorf("key line %q: want an offset", cfg.GPIO.Key)
		}
		// the key is watched for edges; the plain pin request would clash
		lb.board.Key = &unusedPin{level: core.High}
		if err := ctrl.Watch(demo.LineKey, offset, core.PullUp, demo.IRQEXTI1); err != nil {
			return err
		}
	}

	rep, closeReporter, err := buildReporter(cfg, "", gpioOpts.mqtt, 0)
	if err != nil {
		return err
	}
	defer closeReporter()
	lb.board.Report = rep

	if err := d.Setup(lb.board); err != nil {
		return fmt.Errorf("setup %s: %w", name, err)
	}
	log.Printf("Running %s on %s, Ctrl-C to stop", name, cfg.GPIO.Backend)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	for {
		select {
		case sig := <-sigChan:
			log.Printf("Received %v, shutting down", sig)
			return nil
		default:
		}
		if err := d.Step(lb.board); err != nil {
			log.Printf("step: %v", err)
		}
	}
}
