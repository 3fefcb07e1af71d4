package types

import (
	"errors"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// BoundaryPolicy is what to do with a missing value that has no valid
// neighbour within the configured window.
type BoundaryPolicy string

const (
	// BoundaryPolicyLeave keeps the value missing and reports it as unfilled.
	BoundaryPolicyLeave = BoundaryPolicy("leave")

	// BoundaryPolicyWiden grows the window until a valid neighbour is found
	// or the window covers the whole series.
	BoundaryPolicyWiden = BoundaryPolicy("widen")
)

// FillSource selects which values a fill may be computed from.
type FillSource string

const (
	// FillSourcePristine computes every fill from the original input only.
	FillSourcePristine = FillSource("pristine")

	// FillSourceProgressive lets values filled earlier in the same pass
	// (left to right) contribute to later fills.
	FillSourceProgressive = FillSource("progressive")
)

// Options configures a strategy. Every strategy reads only the fields
// it recognizes.
type Options struct {
	WindowSize     int            `yaml:"window_size" envconfig:"WINDOW_SIZE" default:"4"`
	BoundaryPolicy BoundaryPolicy `yaml:"boundary_policy" envconfig:"BOUNDARY_POLICY" default:"widen"`
	FillSource     FillSource     `yaml:"fill_source" envconfig:"FILL_SOURCE" default:"pristine"`

	// MaxGapLength limits the length of a run of missing values the
	// gap-wise strategies will fill; zero means unlimited.
	MaxGapLength int `yaml:"max_gap_length" envconfig:"MAX_GAP_LENGTH"`
}

// DefaultOptions returns options with every field set to its default.
func DefaultOptions() Options {
	var opts Options
	if err := defaults.Set(&opts); err != nil {
		panic(fmt.Errorf("unable to set the default options: %w", err))
	}
	return opts
}

var validate = validator.New()

// ValidateConfig checks a strategy-specific config struct against its
// `validate` tags and converts the first violation into an
// *InvalidOptionError.
func ValidateConfig(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	fe := validationErrors[0]
	reason := "must satisfy '" + fe.Tag() + "'"
	if fe.Param() != "" {
		reason = "must satisfy '" + fe.Tag() + "=" + fe.Param() + "'"
	}
	return &InvalidOptionError{
		Field:  fe.Field(),
		Value:  fe.Value(),
		Reason: reason,
	}
}
