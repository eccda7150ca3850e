// Package main implements the mica-opt CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mica-opt",
	Short: "Mica OIR optimizer",
	Long:  "mica-opt parses textual OIR, runs the pass pipeline and prints or persists the result.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		commonlog.Configure(verbosity, nil)
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(optCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mica-opt version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mica-opt %s\n", version)
	},
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
