// Package logging holds the two process-wide loggers of a benchmark run.
//
// The general logger reports dataset loading, report writing and exports.
// The sweep logger reports per thread count and per repetition progress,
// which is verbose enough that it gets its own level and writes its
// message under "sweep_msg" so the two streams can be told apart when
// they share one output.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	logger      = newLogger(nil)
	sweepLogger = newLogger(sweepFieldMap)
)

var sweepFieldMap = logrus.FieldMap{
	logrus.FieldKeyTime:  "time",
	logrus.FieldKeyLevel: "level",
	logrus.FieldKeyMsg:   "sweep_msg",
}

func newLogger(fields logrus.FieldMap) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	f, _ := formatter("text", fields)
	l.SetFormatter(f)
	return l
}

func formatter(format string, fields logrus.FieldMap) (logrus.Formatter, error) {
	switch format {
	case "", "text":
		return &logrus.TextFormatter{FullTimestamp: true, FieldMap: fields}, nil
	case "json":
		return &logrus.JSONFormatter{FieldMap: fields}, nil
	}
	return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
}

func GetLogger() *logrus.Logger {
	return logger
}

// GetSweepLogger is used by the orchestrator for measurement progress.
func GetSweepLogger() *logrus.Logger {
	return sweepLogger
}

func SetLogLevel(level string) error {
	return setLevel(logger, level)
}

// SetSweepLogLevel sets the sweep level only; "debug" shows every repetition.
func SetSweepLogLevel(level string) error {
	return setLevel(sweepLogger, level)
}

func setLevel(l *logrus.Logger, level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(logLevel)
	return nil
}

// SetFormat switches both loggers between "text" and "json". The sweep
// logger keeps its own message key in either format.
func SetFormat(format string) error {
	general, err := formatter(format, nil)
	if err != nil {
		return err
	}
	sweep, _ := formatter(format, sweepFieldMap)
	logger.SetFormatter(general)
	sweepLogger.SetFormatter(sweep)
	return nil
}

// SetOutput redirects both loggers, mostly so tests can keep stdout quiet.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	sweepLogger.SetOutput(w)
}
