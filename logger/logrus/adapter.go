// Package logrus provides a core.Logger adapter backed by logrus, for
// hosts that already standardize on it.
package logrus

import (
	"github.com/raykavin/fibflow/core"
	"github.com/sirupsen/logrus"
)

type Adapter struct {
	entry *logrus.Entry
}

func NewAdapter(logger *logrus.Logger) *Adapter {
	return &Adapter{entry: logrus.NewEntry(logger)}
}

// WithField implements core.Logger.
func (l *Adapter) WithField(key string, value any) core.Logger {
	return &Adapter{entry: l.entry.WithField(key, value)}
}

// WithFields implements core.Logger.
func (l *Adapter) WithFields(fields map[string]any) core.Logger {
	return &Adapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError implements core.Logger.
func (l *Adapter) WithError(err error) core.Logger {
	return &Adapter{entry: l.entry.WithError(err)}
}

func (l *Adapter) Print(args ...any) { l.entry.Print(args...) }
func (l *Adapter) Trace(args ...any) { l.entry.Trace(args...) }
func (l *Adapter) Debug(args ...any) { l.entry.Debug(args...) }
func (l *Adapter) Info(args ...any)  { l.entry.Info(args...) }
func (l *Adapter) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *Adapter) Error(args ...any) { l.entry.Error(args...) }
func (l *Adapter) Fatal(args ...any) { l.entry.Fatal(args...) }
func (l *Adapter) Panic(args ...any) { l.entry.Panic(args...) }

func (l *Adapter) Printf(format string, args ...any) { l.entry.Printf(format, args...) }
func (l *Adapter) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }
func (l *Adapter) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Adapter) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Adapter) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Adapter) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *Adapter) Fatalf(format string, args ...any) { l.entry.Fatalf(format, args...) }
func (l *Adapter) Panicf(format string, args ...any) { l.entry.Panicf(format, args...) }

// SetLevel implements core.Logger.
func (l *Adapter) SetLevel(level core.Level) {
	l.entry.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements core.Logger.
func (l *Adapter) GetLevel() core.Level {
	return toLevel(l.entry.Logger.GetLevel())
}

// toLogrusLevel converts core.Level to logrus.Level.
func toLogrusLevel(level core.Level) logrus.Level {
	switch level {
	case core.TraceLevel:
		return logrus.TraceLevel
	case core.DebugLevel:
		return logrus.DebugLevel
	case core.InfoLevel:
		return logrus.InfoLevel
	case core.WarnLevel:
		return logrus.WarnLevel
	case core.ErrorLevel:
		return logrus.ErrorLevel
	case core.FatalLevel:
		return logrus.FatalLevel
	case core.PanicLevel:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// toLevel converts logrus.Level to core.Level.
func toLevel(level logrus.Level) core.Level {
	switch level {
	case logrus.TraceLevel:
		return core.TraceLevel
	case logrus.DebugLevel:
		return core.DebugLevel
	case logrus.InfoLevel:
		return core.InfoLevel
	case logrus.WarnLevel:
		return core.WarnLevel
	case logrus.ErrorLevel:
		return core.ErrorLevel
	case logrus.FatalLevel:
		return core.FatalLevel
	case logrus.PanicLevel:
		return core.PanicLevel
	default:
		return core.NoLevel
	}
}
