// internal/logging/logging.go
package logging

import "github.com/sirupsen/logrus"

// New builds the shared daemon logger. Unparseable levels fall back to
// info rather than failing startup; the level is already validated by
// config anyway.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Component returns a child logger tagged with the component name.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
