package qc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/nsaphutils/pkg/frame"
)

// ErrExpectation means the value of a Test cannot be a valid
// expectation for its condition.
var ErrExpectation = errors.New("invalid expectation")

// Test is a single data quality check of a variable.
type Test struct {
	Variable  string    `yaml:"variable"`
	Condition Condition `yaml:"condition"`
	Severity  Severity  `yaml:"severity"`

	// Value is what the variable is compared against; not used by
	// ConditionNoMissing.
	Value string `yaml:"val"`

	// Name defaults to <variable>_<condition>[_<value>].
	Name string `yaml:"name"`

	number      float64
	expectation string
}

// NewTest validates the test and prepares its expectation message.
func NewTest(
	variable string,
	condition Condition,
	severity Severity,
	value string,
	name string,
) (*Test, error) {
	t := &Test{
		Variable:  variable,
		Condition: condition,
		Severity:  severity,
		Value:     value,
		Name:      name,
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Test) init() error {
	if t.Variable == "" {
		return fmt.Errorf("the variable of a test is not set")
	}
	if _, err := ParseCondition(string(t.Condition)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(t.Severity)); err != nil {
		return err
	}

	switch t.Condition {
	case ConditionLessThan, ConditionGreaterThan, ConditionCountMissing, ConditionCountUnfilled:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil || math.IsNaN(v) {
			return fmt.Errorf("%w: %s_%s: '%s' is not a number", ErrExpectation, t.Variable, t.Condition, t.Value)
		}
		t.number = v
	case ConditionDataType:
		if t.Value == "" {
			return fmt.Errorf("%w: %s_%s: the type is not set", ErrExpectation, t.Variable, t.Condition)
		}
	}

	if t.Name == "" {
		t.Name = t.Variable + "_" + string(t.Condition)
		if t.hasValue() {
			t.Name += "_" + t.Value
		}
	}

	if t.Condition.isCount() && t.number < 0 {
		return fmt.Errorf("%w: %s: count conditions must expect at least 0 missing rows", ErrExpectation, t.Name)
	}

	t.expectation = t.constructExpectation()
	return nil
}

func (t *Test) hasValue() bool {
	switch t.Condition {
	case ConditionNoMissing:
		return false
	case ConditionDataType:
		return t.Value != ""
	default:
		return t.number != 0
	}
}

// Expectation phrases the test in words.
func (t *Test) Expectation() string {
	return t.expectation
}

func (t *Test) isFraction() bool {
	return t.number > 0 && t.number < 1
}

func (t *Test) constructExpectation() string {
	out := t.Name + ":" + string(t.Severity) + ": For variable " + t.Variable + ": "
	switch t.Condition {
	case ConditionCountMissing, ConditionCountUnfilled:
		what := "missing"
		if t.Condition == ConditionCountUnfilled {
			what = "left unfilled"
		}
		if t.isFraction() {
			out += fmt.Sprintf("less than %2.2f%% %s", t.number*100, what)
		} else {
			out += "less than " + t.Value + " values " + what
		}
	case ConditionNoMissing:
		out += "no missing values"
	case ConditionDataType:
		out += "all values are " + t.Value
	case ConditionGreaterThan:
		out += "all values greater than " + t.Value
	case ConditionLessThan:
		out += "all values less than " + t.Value
	}
	return out
}

// Check evaluates the test on the frame and logs a message with the
// test severity if the check fails.
//
// ConditionCountUnfilled cannot be evaluated on a frame, see CheckReport.
func (t *Test) Check(ctx context.Context, f *frame.Frame) (bool, error) {
	if t.Condition == ConditionCountUnfilled {
		return false, fmt.Errorf("test '%s' requires an interpolation report", t.Name)
	}

	cells, err := f.Column(t.Variable)
	if err != nil {
		return false, fmt.Errorf("test '%s': %w", t.Name, err)
	}

	var (
		result  bool
		message string
	)
	switch t.Condition {
	case ConditionCountMissing:
		count := 0
		for _, cell := range cells {
			if frame.IsMissingCell(cell) {
				count++
			}
		}
		result, message = t.checkCount(count, len(cells), "missing values observed")

	case ConditionDataType:
		observed := "<none>"
		if len(cells) > 0 {
			observed = cellType(cells[0])
		}
		result = observed == t.Value
		if !result {
			message = t.expectation + ". The first value is of type " + observed
		}

	default:
		values, err := f.Float64Column(t.Variable)
		if err != nil {
			return false, fmt.Errorf("test '%s': %w", t.Name, err)
		}

		count := 0
		for _, v := range values {
			switch t.Condition {
			case ConditionLessThan:
				if v > t.number {
					count++
				}
			case ConditionGreaterThan:
				if v < t.number {
					count++
				}
			case ConditionNoMissing:
				if math.IsNaN(v) {
					count++
				}
			}
		}

		result = count == 0
		if !result {
			message = fmt.Sprintf("%s. check failed. %2.2f%% of observations with invalid values.", t.expectation, percent(count, len(values)))
		}
	}

	if message != "" {
		logger.Logf(ctx, t.Severity.Level(), "%s", message)
	}
	return result, nil
}

// CheckReport evaluates a ConditionCountUnfilled test on the outcome of
// an interpolation.
func (t *Test) CheckReport(ctx context.Context, report *frame.Report) (bool, error) {
	if t.Condition != ConditionCountUnfilled {
		return false, fmt.Errorf("test '%s' cannot be evaluated on an interpolation report", t.Name)
	}
	vr, ok := report.PerVariable[t.Variable]
	if !ok {
		return false, fmt.Errorf("test '%s': variable '%s' was not interpolated", t.Name, t.Variable)
	}

	result, message := t.checkCount(vr.Unfilled, vr.Values, "values left unfilled")
	if message != "" {
		logger.Logf(ctx, t.Severity.Level(), "%s", message)
	}
	return result, nil
}

func (t *Test) checkCount(count, total int, observed string) (bool, string) {
	if t.isFraction() {
		fraction := 0.0
		if total > 0 {
			fraction = float64(count) / float64(total)
		}
		if fraction < t.number {
			return true, ""
		}
		return false, fmt.Sprintf("%s. %2.2f%% %s for %s", t.expectation, fraction*100, observed, t.Variable)
	}

	if float64(count) < t.number {
		return true, ""
	}
	return false, fmt.Sprintf("%s. %d %s for %s", t.expectation, count, observed, t.Variable)
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// cellType names the type of a cell value the way the test values do.
// A missing value is a float.
func cellType(cell string) string {
	if frame.IsMissingCell(cell) {
		return "float"
	}
	if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return "int"
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return "float"
	}
	return "str"
}
