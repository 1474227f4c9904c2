package appServer

import (
	"log"

	"github.com/sirupsen/logrus"
)

// logrusErrorLog routes net/http server errors through logrus.
func logrusErrorLog(l *logrus.Logger) *log.Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return log.New(l.WriterLevel(logrus.ErrorLevel), "http: ", 0)
}
