package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/nsaphutils/pkg/fileio"
	"github.com/xaionaro-go/nsaphutils/pkg/metrics"
	"github.com/xaionaro-go/nsaphutils/pkg/qc"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	name := pflag.String("name", "qc", "the name of the test list, used in the log messages")
	metricsFile := pflag.String("metrics-file", "", "path to write the Prometheus metrics to")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <tests.yml> <input-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	tester := qc.NewTester(*name)
	tester.Metrics = metrics.New()
	assertNoError(tester.LoadYAMLFile(pflag.Arg(0)))

	f, err := fileio.ReadFrame(ctx, pflag.Arg(1))
	assertNoError(err)

	passed, err := tester.Check(ctx, f)
	if err != nil {
		logger.Errorf(ctx, "some quality checks could not be evaluated: %v", err)
	}

	if *metricsFile != "" {
		assertNoError(tester.Metrics.WriteToTextfile(*metricsFile))
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
