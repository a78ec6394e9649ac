package util

import (
	"io"

	"github.com/sirupsen/logrus"
)

// CreateLogEntry creates a new logrus Entry writing to the given writer. A non-empty prefix shows
// up as a field on every line, which is how per-repository log output is told apart.
func CreateLogEntry(writer io.Writer, level logrus.Level, prefix string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(writer)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	entry := logrus.NewEntry(logger)
	if prefix != "" {
		entry = entry.WithField("prefix", prefix)
	}

	return entry
}
