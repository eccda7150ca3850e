package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mica/internal/driver"
	"mica/internal/oir"
	"mica/internal/passes"
	"mica/internal/summary"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] <file.oir>",
	Short: "Run the pass pipeline over a module",
	Long:  "Parse a textual OIR module, run the configured pass pipeline over it and print the result.",
	Args:  cobra.ExactArgs(1),
	RunE:  optExecution,
}

func init() {
	optCmd.Flags().Bool("devirt", false, "enable deinit devirtualization")
	optCmd.Flags().Bool("verify", true, "run the OIR verifier after the pipeline")
	optCmd.Flags().Int("jobs", 0, "pipeline worker count (0 = one per CPU)")
	optCmd.Flags().String("config", "", "explicit mica.toml path")
	optCmd.Flags().StringP("output", "o", "", "write the rewritten module to a file instead of stdout")
	optCmd.Flags().String("emit-summary", "", "write a call-graph summary of the rewritten module to a .mods file")
}

func optExecution(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	path := args[0]

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfigFor(path, configFlag)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("devirt") {
		cfg.Pipeline.DeinitDevirtualization, _ = cmd.Flags().GetBool("devirt")
	}
	if cmd.Flags().Changed("verify") {
		cfg.Pipeline.Verify, _ = cmd.Flags().GetBool("verify")
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Pipeline.Jobs, _ = cmd.Flags().GetInt("jobs")
	}

	mod, err := loadModule(path)
	if err != nil {
		return err
	}

	pipe := passes.NewPipeline(cfg.Pipeline)
	results, err := driver.RunModule(cmd.Context(), mod, pipe, cfg.Pipeline.Jobs)
	if err != nil {
		return err
	}

	if cfg.Pipeline.Verify {
		if verifyErrs := oir.VerifyModule(mod); len(verifyErrs) > 0 {
			for _, verifyErr := range verifyErrs {
				color.Red("verify: %s", verifyErr)
			}
			return fmt.Errorf("%s: verification failed after rewriting", path)
		}
	}

	rewritten := 0
	for _, result := range results {
		if result.Changed() {
			rewritten++
		}
	}

	text := oir.Print(mod)
	outputFlag, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Print(text)
	}

	summaryFlag, err := cmd.Flags().GetString("emit-summary")
	if err != nil {
		return err
	}
	if summaryFlag != "" {
		if err := summary.WriteFile(summaryFlag, summary.Build(mod)); err != nil {
			return err
		}
	}

	color.Green("Optimized %s in %s (%d of %d functions rewritten)",
		path, formatDuration(time.Since(startTime)), rewritten, len(results))
	return nil
}
