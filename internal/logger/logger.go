package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func SetupLogger(logLevel string) *logrus.Logger {
	return New(os.Stdout, logLevel)
}

func New(out io.Writer, logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{})

	switch logLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
