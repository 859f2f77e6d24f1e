package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"irqlab/core"
	"irqlab/host/monitor"
	"irqlab/host/serial"
	"irqlab/report"
)

var (
	monitorOpts = struct {
		device string
		baud   int
		file   string
		mqtt   bool
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Print counter reports from a board",
		Long:  "Read report frames from the board's serial console (or a frames file written by 'sim --frames') and print every counter report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if monitorOpts.device != "" {
				cfg.Serial.Device = monitorOpts.device
			}
			if monitorOpts.baud != 0 {
				cfg.Serial.Baud = monitorOpts.baud
			}

			var port io.ReadCloser
			if monitorOpts.file != "" {
				port, err = os.Open(monitorOpts.file)
			} else {
				sc := serial.DefaultConfig(cfg.Serial.Device)
				sc.Baud = cfg.Serial.Baud
				port, err = serial.Open(sc)
			}
			if err != nil {
				return err
			}

			var forward report.Reporter
			if monitorOpts.mqtt {
				pub, err := report.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
				if err != nil {
					port.Close()
					return fmt.Errorf("mqtt: %w", err)
				}
				defer pub.Close()
				forward = pub
			}

			return runMonitor(monitor.New(port), forward)
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "d", "", "Serial device. Default: serial.device")
	monitorCmd.Flags().IntVarP(&monitorOpts.baud, "baud", "b", 0, "Baud rate. Default: serial.baud")
	monitorCmd.Flags().StringVarP(&monitorOpts.file, "file", "f", "", "Read frames from a file instead of a serial port")
	monitorCmd.Flags().BoolVar(&monitorOpts.mqtt, "mqtt", false, "Forward reports to the configured broker")
}

func runMonitor(m *monitor.Monitor, forward report.Reporter) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case f, ok := <-m.Frames():
			if !ok {
				m.Close()
				return finishMonitor(m)
			}
			switch {
			case f.Hello != nil:
				log.Printf("Board: protocol v%d, clock %d Hz", f.Hello.Version, f.Hello.ClockHz)
			case f.Counter != nil:
				log.Print(report.FormatLine(*f.Counter))
				if forward != nil {
					if err := forward.Report(*f.Counter); err != nil {
						log.Printf("forward: %v", err)
					}
				}
			case f.Timing != nil:
				t := f.Timing
				log.Printf("[TIMING] %s oid=%d clock=%d v1=%d v2=%d",
					core.EventName(t.EventType), t.OID, t.Clock, t.Value1, t.Value2)
			}
		case sig := <-sigChan:
			log.Printf("Received %v, shutting down", sig)
			m.Close()
			return finishMonitor(m)
		}
	}
}

func finishMonitor(m *monitor.Monitor) error {
	dropped, gaps := m.Stats()
	if dropped != 0 || gaps != 0 {
		log.Printf("Framing: %d bytes dropped, %d sequence gaps", dropped, gaps)
	}
	for name, s := range m.Snapshot() {
		log.Printf("final %s: %d (missed %d)", name, s.Events, s.Missed)
	}
	return m.Err()
}
