// irqlab runs the interrupt demos on the simulator or on Linux GPIO,
// measures timer accuracy and monitors a board's report frames.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"irqlab/config"
)

var (
	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:          "irqlab",
		Short:        "Interrupt demos for the STM32F1 blue pill",
		Long:         "Run the interrupt demos on a simulated board or Linux GPIO, measure timer periods and monitor report frames from real hardware.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file. Default: built-in defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print handler timing events and debug output")

	rootCmd.AddCommand(simCmd, measureCmd, monitorCmd, listCmd)
}

// loadConfig reads the file named by --config, or the defaults
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
