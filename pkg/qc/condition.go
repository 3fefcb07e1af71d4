package qc

import (
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Condition is what a Test expects from a variable.
type Condition string

const (
	// ConditionLessThan expects every value to be not greater than the test value.
	ConditionLessThan = Condition("lt")

	// ConditionGreaterThan expects every value to be not less than the test value.
	ConditionGreaterThan = Condition("gt")

	// ConditionDataType expects the first value to be of the type named by
	// the test value: "int", "float" or "str".
	ConditionDataType = Condition("dtype")

	// ConditionNoMissing expects no missing values.
	ConditionNoMissing = Condition("no_nan")

	// ConditionCountMissing expects less missing values than the test value,
	// or less than that fraction of the rows if the test value is in (0, 1).
	ConditionCountMissing = Condition("count_nan")

	// ConditionCountUnfilled is like ConditionCountMissing, but counts the
	// values the interpolation left unfilled. It is evaluated against an
	// interpolation report, not a frame.
	ConditionCountUnfilled = Condition("count_unfilled")
)

var conditionByName = map[string]Condition{
	"less_than":      ConditionLessThan,
	"greater_than":   ConditionGreaterThan,
	"data_type":      ConditionDataType,
	"no_missing":     ConditionNoMissing,
	"count_missing":  ConditionCountMissing,
	"count_unfilled": ConditionCountUnfilled,
}

// Conditions returns every condition.
func Conditions() []Condition {
	return []Condition{
		ConditionLessThan,
		ConditionGreaterThan,
		ConditionDataType,
		ConditionNoMissing,
		ConditionCountMissing,
		ConditionCountUnfilled,
	}
}

// ParseCondition accepts both the short form ("lt") and the long
// name ("less_than").
func ParseCondition(s string) (Condition, error) {
	if c, ok := conditionByName[s]; ok {
		return c, nil
	}
	for _, c := range Conditions() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown condition '%s'", s)
}

func (c *Condition) UnmarshalText(b []byte) error {
	parsed, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Condition) isCount() bool {
	return c == ConditionCountMissing || c == ConditionCountUnfilled
}

// Severity is the log level a failed Test is reported with.
type Severity string

const (
	SeverityDebug    = Severity("debug")
	SeverityInfo     = Severity("info")
	SeverityWarning  = Severity("warning")
	SeverityError    = Severity("error")
	SeverityCritical = Severity("critical")
)

func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity '%s'", s)
}

func (s *Severity) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Level returns the log level. Critical is logged as an error, since
// the more severe levels of the logger terminate the program.
func (s Severity) Level() logger.Level {
	switch s {
	case SeverityDebug:
		return logger.LevelDebug
	case SeverityInfo:
		return logger.LevelInfo
	case SeverityWarning:
		return logger.LevelWarning
	default:
		return logger.LevelError
	}
}
