package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// initLogger инициализирует логгер репозиториев и сервисов.
// В release режиме пишем JSON, иначе текст с уровнем не ниже debug.
func initLogger(release bool, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	logger.SetFormatter(new(logrus.JSONFormatter))
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if !release {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(new(logrus.TextFormatter))
	}

	return logger
}
