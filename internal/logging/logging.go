// Package logging provides runtime.Logger implementations for hosts that do not run inside Nakama.
package logging

import (
	"io"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Logrus adapts a logrus entry to runtime.Logger so tables log the same way under every host.
type Logrus struct {
	entry *logrus.Entry
}

// New returns a JSON logger writing to w at the given level ("debug", "info", "warn", "error").
// An unknown level falls back to info.
func New(w io.Writer, level string) *Logrus {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return &Logrus{entry: logrus.NewEntry(l)}
}

// FromEntry wraps an existing logrus entry.
func FromEntry(entry *logrus.Entry) *Logrus {
	return &Logrus{entry: entry}
}

func (l *Logrus) Debug(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *Logrus) Info(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *Logrus) Warn(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *Logrus) Error(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *Logrus) WithField(key string, v interface{}) runtime.Logger {
	return &Logrus{entry: l.entry.WithField(key, v)}
}

func (l *Logrus) WithFields(fields map[string]interface{}) runtime.Logger {
	return &Logrus{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logrus) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}

// Discard returns a logger that drops everything.
func Discard() runtime.Logger {
	return discard{}
}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
func (discard) WithField(string, interface{}) runtime.Logger {
	return discard{}
}
func (discard) WithFields(map[string]interface{}) runtime.Logger {
	return discard{}
}
func (discard) Fields() map[string]interface{} {
	return nil
}
