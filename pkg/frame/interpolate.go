package frame

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation"
	"github.com/xaionaro-go/nsaphutils/pkg/metrics"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
	"github.com/xaionaro-go/observability"
)

// Request describes a grouped interpolation of a Frame.
type Request struct {
	// Variables are the columns to fill.
	Variables []string

	// Method is the short name of the strategy, e.g. "ma".
	Method string

	// TimeVar and ByVar are the columns the rows are sorted by before
	// the interpolation. ByVar also identifies the groups; rows of
	// different groups never influence each other.
	TimeVar string
	ByVar   string

	Options interpolation.Options

	// Workers is the amount of groups interpolated concurrently;
	// zero means GOMAXPROCS.
	Workers int

	// Dispatcher defaults to interpolation.DefaultDispatcher.
	Dispatcher *interpolation.Dispatcher

	// Metrics is optional.
	Metrics *metrics.Recorder
}

type VariableReport struct {
	Groups int

	// Values is the amount of values of the variable in all the groups.
	Values   int
	Filled   int
	Unfilled int
}

// Report summarizes an InterpolateFrame call.
type Report struct {
	PerVariable map[string]VariableReport
}

// Unfilled returns the amount of values left missing in the variable.
func (r *Report) Unfilled(variable string) int {
	return r.PerVariable[variable].Unfilled
}

type job struct {
	variable string
	group    Group
}

// InterpolateFrame sorts the rows of f by (TimeVar, ByVar), splits them
// into groups by ByVar, and fills the missing values of every variable
// within each group. On success the rows of f are left sorted and the
// filled values are written into it; on failure f is not modified.
//
// A group where a variable has no valid value at all is left as is and
// reported as unfilled.
func InterpolateFrame(
	ctx context.Context,
	f *Frame,
	req Request,
) (_ret *Report, _err error) {
	logger.Tracef(ctx, "InterpolateFrame(rows:%d, vars:%v, method:%s)", f.Len(), req.Variables, req.Method)
	defer func() { logger.Tracef(ctx, "/InterpolateFrame(rows:%d, vars:%v, method:%s): %v", f.Len(), req.Variables, req.Method, _err) }()

	if len(req.Variables) == 0 {
		return nil, fmt.Errorf("no variables to interpolate")
	}

	dispatcher := req.Dispatcher
	if dispatcher == nil {
		var err error
		dispatcher, err = interpolation.DefaultDispatcher(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize the dispatcher: %w", err)
		}
	}
	method, err := interpolation.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	var sortColumns []string
	for _, column := range []string{req.TimeVar, req.ByVar} {
		if column != "" {
			sortColumns = append(sortColumns, column)
		}
	}
	sorted := &Frame{
		Header:  f.Header,
		Records: append([][]string(nil), f.Records...),
	}
	if err := sorted.SortStable(sortColumns...); err != nil {
		return nil, fmt.Errorf("unable to sort the rows: %w", err)
	}

	groups, err := sorted.GroupBy(req.ByVar)
	if err != nil {
		return nil, fmt.Errorf("unable to group the rows: %w", err)
	}

	columns := make(map[string][]float64, len(req.Variables))
	filledColumns := make(map[string][]float64, len(req.Variables))
	for _, variable := range req.Variables {
		values, err := sorted.Float64Column(variable)
		if err != nil {
			return nil, err
		}
		columns[variable] = values
		filledColumns[variable] = append([]float64(nil), values...)
	}

	report := &Report{
		PerVariable: make(map[string]VariableReport, len(req.Variables)),
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan job)
	var (
		wg     sync.WaitGroup
		locker sync.Mutex
		mErr   *multierror.Error
	)
	for range workers {
		wg.Add(1)
		observability.Go(ctx, func() {
			defer wg.Done()
			for j := range jobs {
				values := columns[j.variable]
				groupValues := make([]float64, len(j.group.Rows))
				for idx, rowIdx := range j.group.Rows {
					groupValues[idx] = values[rowIdx]
				}
				s := series.New(groupValues)
				s.Name = j.variable

				startTS := time.Now()
				result, err := dispatcher.InterpolateMethod(ctx, s, method, req.Options)
				duration := time.Since(startTS)

				switch {
				case errors.Is(err, interpolation.ErrInsufficientData):
					logger.Warnf(ctx, "variable '%s' has no valid values in group '%s', leaving it as is", j.variable, j.group.Key)
					req.Metrics.RecordInterpolationError(req.Method)
					locker.Lock()
					vr := report.PerVariable[j.variable]
					vr.Groups++
					vr.Values += s.Len()
					vr.Unfilled += s.CountMissing()
					report.PerVariable[j.variable] = vr
					locker.Unlock()
					continue
				case err != nil:
					req.Metrics.RecordInterpolationError(req.Method)
					locker.Lock()
					mErr = multierror.Append(mErr, fmt.Errorf("unable to interpolate variable '%s' in group '%s': %w", j.variable, j.group.Key, err))
					locker.Unlock()
					continue
				}
				req.Metrics.ObserveInterpolation(req.Method, result.Filled, result.Unfilled, duration.Seconds())

				// groups are disjoint, so are the written rows
				filled := filledColumns[j.variable]
				for idx, rowIdx := range j.group.Rows {
					filled[rowIdx] = result.Series.Values[idx]
				}

				locker.Lock()
				vr := report.PerVariable[j.variable]
				vr.Groups++
				vr.Values += s.Len()
				vr.Filled += result.Filled
				vr.Unfilled += result.Unfilled
				report.PerVariable[j.variable] = vr
				locker.Unlock()
			}
		})
	}

	for _, variable := range req.Variables {
		logger.Infof(ctx, "interpolating %s in %d groups", variable, len(groups))
	}

feed:
	for _, variable := range req.Variables {
		for _, group := range groups {
			select {
			case <-ctx.Done():
				break feed
			case jobs <- job{variable: variable, group: group}:
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mErr.ErrorOrNil(); err != nil {
		return nil, err
	}

	for _, variable := range req.Variables {
		colIdx, _ := sorted.ColumnIndex(variable)
		orig := columns[variable]
		for rowIdx, v := range filledColumns[variable] {
			if series.IsMissingValue(orig[rowIdx]) && !series.IsMissingValue(v) {
				sorted.Records[rowIdx][colIdx] = FormatFloat64(v)
			}
		}
	}
	f.Records = sorted.Records

	return report, nil
}
