package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	log *logger
)

type logger struct {
	log *logrus.Logger
}

func init() {
	log = newLogger(os.Getenv("LOG_LEVEL"))
}

// SetLevel reconfigures the package level logger. Called once at startup
// after the env has been loaded.
func SetLevel(logLevel string) {
	log = newLogger(logLevel)
}

func newLogger(logLevel string) *logger {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	return &logger{
		log: &logrus.Logger{
			Level:     level,
			Out:       os.Stdout,
			Formatter: &logrus.TextFormatter{},
		},
	}
}

func (l *logger) Info(msg string, tags ...string) {
	l.log.WithFields(parseFields(tags...)).Info(msg)
}

func (l *logger) Printf(msg string, args ...interface{}) {
	l.log.Printf(msg, args...)
}

func (l *logger) Debug(msg string, tags ...string) {
	l.log.WithFields(parseFields(tags...)).Debug(msg)
}

func (l *logger) Warn(msg string, tags ...string) {
	l.log.WithFields(parseFields(tags...)).Warn(msg)
}

func (l *logger) Error(msg string, err error, tags ...string) {
	l.log.WithFields(parseFields(tags...)).Error(fmt.Sprintf("%s -- ERROR -- %v", msg, err))
}

func (l *logger) Fatal(err error) {
	l.log.Fatal(err)
}

// Package level helpers

func Info(msg string, tags ...string) {
	log.Info(msg, tags...)
}

func Printf(msg string, args ...interface{}) {
	log.Printf(msg, args...)
}

func Debug(msg string, tags ...string) {
	log.Debug(msg, tags...)
}

func Warn(msg string, tags ...string) {
	log.Warn(msg, tags...)
}

func Error(msg string, err error, tags ...string) {
	log.Error(msg, err, tags...)
}

func Fatal(err error) {
	log.Fatal(err)
}

// parseFields turns "key:value" tags into logrus fields. Tags without a
// colon are dropped.
func parseFields(tags ...string) logrus.Fields {
	result := make(logrus.Fields, len(tags))

	for _, tag := range tags {
		els := strings.SplitN(tag, ":", 2)
		if len(els) > 1 {
			result[strings.TrimSpace(els[0])] = strings.TrimSpace(els[1])
		}
	}
	return result
}
