package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mica/internal/summary"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Build and inspect call-graph summaries",
}

var summaryBuildCmd = &cobra.Command{
	Use:   "build <file.oir> -o <file.mods>",
	Short: "Build a call-graph summary for a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		mod, err := loadModule(args[0])
		if err != nil {
			return err
		}
		return summary.WriteFile(output, summary.Build(mod))
	},
}

var summaryDumpCmd = &cobra.Command{
	Use:   "dump <file.mods>",
	Short: "Print the contents of a summary file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ms, err := summary.ReadFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("module %s (%d functions)\n", ms.Name, len(ms.Functions))
		for _, fn := range ms.Functions {
			liveness := "dead"
			if fn.Live {
				liveness = "live"
			}
			fmt.Printf("  %016x %s %s\n", fn.GUID, liveness, fn.Name)
			for _, edge := range fn.Edges {
				line := fmt.Sprintf("%s -> %016x", edge.Kind, edge.Target)
				if edge.Table != 0 {
					line += fmt.Sprintf(" via %016x", edge.Table)
				}
				fmt.Printf("    %s\n", line)
			}
		}
		return nil
	},
}

func init() {
	summaryBuildCmd.Flags().StringP("output", "o", "module.mods", "summary output path")
	summaryCmd.AddCommand(summaryBuildCmd)
	summaryCmd.AddCommand(summaryDumpCmd)
}
