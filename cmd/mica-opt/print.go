package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mica/internal/oir"
)

var printCmd = &cobra.Command{
	Use:   "print <file.oir>",
	Short: "Parse a module and print its canonical text",
	Long:  "Parse a textual OIR module and print it back in canonical form. Values keep the arena numbering assigned during conversion.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := loadModule(args[0])
		if err != nil {
			return err
		}
		fmt.Print(oir.Print(mod))
		return nil
	},
}
