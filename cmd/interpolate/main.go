package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/nsaphutils/pkg/config"
	"github.com/xaionaro-go/nsaphutils/pkg/fileio"
	"github.com/xaionaro-go/nsaphutils/pkg/frame"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation"
	_ "github.com/xaionaro-go/nsaphutils/pkg/interpolation/implementations/all"
	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
	"github.com/xaionaro-go/nsaphutils/pkg/metrics"
	"github.com/xaionaro-go/nsaphutils/pkg/qc"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML job file")
	method := pflag.String("method", "", "interpolation method: ma, linear or fourier")
	window := pflag.Int("window", 0, "moving average window: the amount of neighbours on each side")
	boundaryPolicy := pflag.String("boundary-policy", "", "what to do with a value without valid neighbours in the window: leave or widen")
	fillSource := pflag.String("fill-source", "", "what values the moving average is computed from: pristine or progressive")
	maxGap := pflag.Int("max-gap", 0, "linear/fourier: leave the gaps longer than this unfilled; 0 means unlimited")
	vars := pflag.StringSlice("vars", nil, "the columns to interpolate")
	timeVar := pflag.String("time-var", "", "the column with the time dimension")
	byVar := pflag.String("by-var", "", "the column identifying the groups (e.g. spatial units)")
	years := pflag.String("years", "", "keep only these years, e.g. '1992:1995 1998'")
	yearVar := pflag.String("year-var", "", "the column with the year (default: year)")
	workers := pflag.Int("workers", 0, "the amount of groups interpolated concurrently; 0 means GOMAXPROCS")
	qcTests := pflag.String("qc", "", "path to a YAML list of quality checks to run on the result")
	metricsFile := pflag.String("metrics-file", "", "path to write the Prometheus metrics to")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <input-file> <output-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	cfg, err := config.Load(*configPath)
	assertNoError(err)

	flags := pflag.CommandLine
	if flags.Changed("method") {
		cfg.Interpolation.Method = *method
	}
	if flags.Changed("window") {
		cfg.Interpolation.Options.WindowSize = *window
	}
	if flags.Changed("boundary-policy") {
		cfg.Interpolation.Options.BoundaryPolicy = types.BoundaryPolicy(*boundaryPolicy)
	}
	if flags.Changed("fill-source") {
		cfg.Interpolation.Options.FillSource = types.FillSource(*fillSource)
	}
	if flags.Changed("max-gap") {
		cfg.Interpolation.Options.MaxGapLength = *maxGap
	}
	if flags.Changed("vars") {
		cfg.Interpolation.Variables = *vars
	}
	if flags.Changed("time-var") {
		cfg.Interpolation.TimeVar = *timeVar
	}
	if flags.Changed("by-var") {
		cfg.Interpolation.ByVar = *byVar
	}
	if flags.Changed("years") {
		cfg.Years = *years
	}
	if flags.Changed("year-var") {
		cfg.YearVar = *yearVar
	}
	if flags.Changed("workers") {
		cfg.Workers = *workers
	}
	if flags.Changed("qc") {
		cfg.QC.Tests = *qcTests
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = *metricsFile
	}
	assertNoError(cfg.Validate())
	if len(cfg.Interpolation.Variables) == 0 {
		panic(fmt.Errorf("no variables to interpolate, use --vars"))
	}
	if _, err := interpolation.ParseMethod(cfg.Interpolation.Method); err != nil {
		panic(err)
	}

	f, err := fileio.ReadFrame(ctx, pflag.Arg(0))
	assertNoError(err)

	if cfg.Years != "" {
		years, err := config.ParseYears(cfg.Years)
		assertNoError(err)
		assertNoError(f.FilterYears(cfg.YearVar, years))
		logger.Infof(ctx, "%d rows left after filtering by years %s", f.Len(), cfg.Years)
	}

	m := metrics.New()
	report, err := frame.InterpolateFrame(ctx, f, frame.Request{
		Variables: cfg.Interpolation.Variables,
		Method:    cfg.Interpolation.Method,
		TimeVar:   cfg.Interpolation.TimeVar,
		ByVar:     cfg.Interpolation.ByVar,
		Options:   cfg.Interpolation.Options,
		Workers:   cfg.Workers,
		Metrics:   m,
	})
	assertNoError(err)
	for _, variable := range cfg.Interpolation.Variables {
		vr := report.PerVariable[variable]
		logger.Infof(ctx, "%s: %d groups, %d values, %d filled, %d left unfilled", variable, vr.Groups, vr.Values, vr.Filled, vr.Unfilled)
	}

	assertNoError(fileio.WriteFrame(ctx, pflag.Arg(1), f))

	passed := true
	if cfg.QC.Tests != "" {
		tester := qc.NewTester(cfg.QC.Name)
		tester.Metrics = m
		assertNoError(tester.LoadYAMLFile(cfg.QC.Tests))

		ok, err := tester.Check(ctx, f)
		if err != nil {
			logger.Errorf(ctx, "some quality checks could not be evaluated: %v", err)
		}
		passed = passed && ok

		ok, err = tester.CheckReport(ctx, report)
		if err != nil {
			logger.Errorf(ctx, "some quality checks could not be evaluated: %v", err)
		}
		passed = passed && ok
	}

	if cfg.MetricsFile != "" {
		assertNoError(m.WriteToTextfile(cfg.MetricsFile))
	}

	if !passed {
		belt.Flush(ctx)
		os.Exit(1)
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
