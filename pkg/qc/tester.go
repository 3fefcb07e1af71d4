// Package qc checks the quality of tabular data against a list of
// expectations loaded from YAML.
package qc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/nsaphutils/pkg/frame"
	"github.com/xaionaro-go/nsaphutils/pkg/metrics"
	"gopkg.in/yaml.v3"
)

// Tester is a named list of tests.
type Tester struct {
	Name  string
	Tests []*Test

	// Metrics is optional.
	Metrics *metrics.Recorder
}

func NewTester(name string) *Tester {
	return &Tester{
		Name: name,
	}
}

func (t *Tester) Add(test *Test) {
	t.Tests = append(t.Tests, test)
}

// LoadYAML appends the tests from a YAML list, e.g.:
//
//	- variable: pm25
//	  condition: count_missing
//	  severity: warning
//	  val: 0.05
func (t *Tester) LoadYAML(r io.Reader) error {
	var tests []*Test
	if err := yaml.NewDecoder(r).Decode(&tests); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("unable to decode the test list: %w", err)
	}

	for idx, test := range tests {
		if err := test.init(); err != nil {
			return fmt.Errorf("invalid test #%d: %w", idx, err)
		}
		t.Add(test)
	}
	return nil
}

func (t *Tester) LoadYAMLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()
	if err := t.LoadYAML(f); err != nil {
		return fmt.Errorf("unable to load '%s': %w", path, err)
	}
	return nil
}

// Check runs every test except the ConditionCountUnfilled ones on the
// frame. It returns true if all of them passed; a test that could not
// be evaluated counts as failed and is reported in the error.
func (t *Tester) Check(ctx context.Context, f *frame.Frame) (bool, error) {
	return t.run(ctx, func(test *Test) (bool, bool, error) {
		if test.Condition == ConditionCountUnfilled {
			return false, false, nil
		}
		ok, err := test.Check(ctx, f)
		return true, ok, err
	})
}

// CheckReport runs the ConditionCountUnfilled tests on the report of
// an interpolation.
func (t *Tester) CheckReport(ctx context.Context, report *frame.Report) (bool, error) {
	return t.run(ctx, func(test *Test) (bool, bool, error) {
		if test.Condition != ConditionCountUnfilled {
			return false, false, nil
		}
		ok, err := test.CheckReport(ctx, report)
		return true, ok, err
	})
}

func (t *Tester) run(
	ctx context.Context,
	check func(test *Test) (applicable bool, passed bool, err error),
) (bool, error) {
	var (
		mErr        *multierror.Error
		numTests    int
		numFailures int
	)
	for _, test := range t.Tests {
		applicable, passed, err := check(test)
		if !applicable {
			continue
		}
		numTests++
		if err != nil {
			mErr = multierror.Append(mErr, err)
		}
		if !passed {
			numFailures++
		}
		t.Metrics.RecordQCCheck(string(test.Severity), passed)
	}

	logger.Infof(ctx, "%s: All Tests Completed. Out of %d tests: %d passed and %d failed.", t.Name, numTests, numTests-numFailures, numFailures)
	return numFailures == 0, mErr.ErrorOrNil()
}
