// Package logging holds the project-wide logrus logger.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

func projectLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	})
	return logger
}

// GetProjectLogger returns the shared logger tagged with the app name.
func GetProjectLogger() *logrus.Entry {
	return projectLogger().WithField("app", "drumscript")
}

// GetLogger returns the shared logger tagged with a component name.
func GetLogger(component string) *logrus.Entry {
	return GetProjectLogger().WithField("component", component)
}

// SetLevel parses and applies a level such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	projectLogger().SetLevel(lvl)
	return nil
}

// SetOutput redirects log output, e.g. away from the terminal while the TUI
// owns the screen.
func SetOutput(w io.Writer) {
	projectLogger().SetOutput(w)
}
