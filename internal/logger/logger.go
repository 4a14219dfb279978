package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger writes category-tagged log lines. Text output colours the category
// tag, JSON output carries it as a "category" field.
type Logger struct {
	base *logrus.Logger
	json bool
}

var categoryColors = map[string]*color.Color{
	"API":      color.New(color.FgGreen),
	"DATABASE": color.New(color.FgBlue),
	"KAFKA":    color.New(color.FgMagenta),
	"PAYMENT":  color.New(color.FgYellow),
	"BOOKING":  color.New(color.FgCyan),
	"SECURITY": color.New(color.FgRed, color.Bold),
	"PROCESS":  color.New(color.FgWhite, color.Bold),
}

// NewLogger returns a text logger at info level writing to stdout.
func NewLogger() *Logger {
	return New(os.Stdout, "info", "text")
}

// New builds a logger for the given level ("debug", "info", ...) and format
// ("text" or "json"). Unknown levels fall back to info.
func New(out io.Writer, level, format string) *Logger {
	base := logrus.New()
	base.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	isJSON := strings.EqualFold(format, "json")
	if isJSON {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{base: base, json: isJSON}
}

func (l *Logger) entry(category, msg string) (*logrus.Entry, string) {
	if l.json {
		return l.base.WithField("category", category), msg
	}
	c, ok := categoryColors[category]
	if !ok {
		c = color.New(color.FgHiBlack)
	}
	return logrus.NewEntry(l.base), c.Sprintf("[%s]", category) + " " + msg
}

func (l *Logger) Debug(category, msg string) {
	e, m := l.entry(category, msg)
	e.Debug(m)
}

func (l *Logger) Info(category, msg string) {
	e, m := l.entry(category, msg)
	e.Info(m)
}

func (l *Logger) Warn(category, msg string) {
	e, m := l.entry(category, msg)
	e.Warn(m)
}

func (l *Logger) Error(category, msg string) {
	e, m := l.entry(category, msg)
	e.Error(m)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(category, msg string) {
	e, m := l.entry(category, msg)
	e.Fatal(m)
}

func (l *Logger) LogProcess(step, msg string) {
	l.Info("PROCESS", fmt.Sprintf("%s: %s", step, msg))
}

func (l *Logger) LogDatabase(operation, table, msg string) {
	l.Debug("DATABASE", fmt.Sprintf("%s %s: %s", operation, table, msg))
}

func (l *Logger) LogKafka(operation, topic, msg string) {
	l.Info("KAFKA", fmt.Sprintf("%s [%s]: %s", operation, topic, msg))
}

func (l *Logger) LogPayment(operation, ref, msg string) {
	l.Info("PAYMENT", fmt.Sprintf("%s %s: %s", operation, ref, msg))
}

func (l *Logger) LogBooking(operation, ref, msg string) {
	l.Info("BOOKING", fmt.Sprintf("%s %s: %s", operation, ref, msg))
}

func (l *Logger) LogAPI(method, path, status, duration, actor string) {
	l.Info("API", fmt.Sprintf("%s %s - %s (%s) by %s", method, path, status, duration, actor))
}

func (l *Logger) LogSecurity(event, msg string) {
	l.Warn("SECURITY", fmt.Sprintf("%s: %s", event, msg))
}

// Close flushes the underlying writer when it supports it.
func (l *Logger) Close() error {
	if s, ok := l.base.Out.(interface{ Sync() error }); ok {
		// stdout returns EINVAL on some platforms
		_ = s.Sync()
	}
	return nil
}
