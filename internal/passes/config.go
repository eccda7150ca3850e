package passes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project configuration file looked up from the
// working directory upward.
const ConfigFileName = "mica.toml"

// Config is the on-disk project configuration.
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
}

// PipelineConfig selects which passes run and how the driver schedules
// them.
type PipelineConfig struct {
	// DeinitDevirtualization stays off by default: the transform can
	// mask bugs where other passes destructure an aggregate instead of
	// destroying it wholesale, so it is opt-in until hardened.
	DeinitDevirtualization bool `toml:"deinit_devirtualization"`
	// Verify runs the OIR verifier after the pipeline.
	Verify bool `toml:"verify"`
	// Jobs caps driver parallelism; 0 means one worker per CPU.
	Jobs int `toml:"jobs"`
}

// DefaultConfig returns the configuration used when no mica.toml is
// found.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			DeinitDevirtualization: false,
			Verify:                 true,
			Jobs:                   0,
		},
	}
}

// LoadConfig parses a mica.toml file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// FindConfig walks from startDir upward looking for mica.toml. It
// returns the path and whether one was found.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
