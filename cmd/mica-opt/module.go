package main

import (
	"fmt"
	"os"
	"path/filepath"

	"mica/grammar"
	"mica/internal/errors"
	"mica/internal/oir"
	"mica/internal/passes"
)

// loadModule parses and converts one OIR source file. Conversion
// diagnostics are rendered against the source and reported as a single
// error.
func loadModule(path string) (*oir.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	file, err := grammar.ParseSource(path, string(source))
	if err != nil {
		return nil, err
	}

	mod, convErrs := grammar.Convert(file)
	if len(convErrs) > 0 {
		reporter := errors.NewErrorReporter(path, string(source))
		for _, convErr := range convErrs {
			fmt.Print(reporter.FormatError(convErr))
		}
		return nil, fmt.Errorf("%s: %d error(s)", path, len(convErrs))
	}
	return mod, nil
}

// loadConfigFor resolves the pipeline configuration for an input file:
// the explicit --config path when given, otherwise the nearest
// mica.toml walking up from the input's directory, otherwise defaults.
func loadConfigFor(inputPath, configFlag string) (passes.Config, error) {
	if configFlag != "" {
		return passes.LoadConfig(configFlag)
	}

	dir := filepath.Dir(inputPath)
	found, ok, err := passes.FindConfig(dir)
	if err != nil {
		return passes.Config{}, err
	}
	if !ok {
		return passes.DefaultConfig(), nil
	}
	return passes.LoadConfig(found)
}
