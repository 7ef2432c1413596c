// Package logging holds the process-wide logrus logger
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// Get returns the shared logger
func Get() *logrus.Logger {
	return logg
}

// Configure applies the level and format from config. Unknown levels keep the current one.
func Configure(level, format string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logg.SetLevel(lvl)
	}
	switch strings.ToLower(format) {
	case "text":
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logg.SetFormatter(&logrus.JSONFormatter{})
	}
}

// SetOutput redirects the shared logger, mostly for tests and the CLI
func SetOutput(w io.Writer) {
	logg.SetOutput(w)
}

func LogError(moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}
