// Package config loads the description of an interpolation job.
//
// The values are taken, in the order of increasing priority, from the
// `default` struct tags, the NSAPH_* environment variables and the YAML
// job file. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables.
const EnvPrefix = "NSAPH"

type Config struct {
	Interpolation Interpolation `yaml:"interpolation" envconfig:"INTERPOLATION"`
	QC            QC            `yaml:"qc" envconfig:"QC"`

	// Years keeps only the rows with YearVar in the set, e.g. "1992:1995 1998".
	Years   string `yaml:"years" envconfig:"YEARS"`
	YearVar string `yaml:"year_var" envconfig:"YEAR_VAR" default:"year"`

	Workers     int    `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

type Interpolation struct {
	Method    string        `yaml:"method" envconfig:"METHOD" default:"ma" validate:"required"`
	Variables []string      `yaml:"variables" envconfig:"VARIABLES"`
	TimeVar   string        `yaml:"time_var" envconfig:"TIME_VAR"`
	ByVar     string        `yaml:"by_var" envconfig:"BY_VAR"`
	Options   types.Options `yaml:"options" envconfig:"OPTIONS"`
}

type QC struct {
	// Tests is the path to a YAML list of quality checks.
	Tests string `yaml:"tests" envconfig:"TESTS"`
	Name  string `yaml:"name" envconfig:"TESTER_NAME" default:"qc"`
}

// Load reads the environment and, if path is not empty, the job file.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("unable to process the environment: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open '%s': %w", path, err)
		}
		defer f.Close()
		if err := decodeYAML(f, &cfg); err != nil {
			return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the fields that do not depend on the chosen strategy;
// the strategy validates its options itself.
func (cfg *Config) Validate() error {
	if err := types.ValidateConfig(cfg); err != nil {
		return err
	}
	if cfg.Years != "" {
		if _, err := ParseYears(cfg.Years); err != nil {
			return fmt.Errorf("invalid years: %w", err)
		}
	}
	return nil
}
