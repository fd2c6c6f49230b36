package logger

import corelogger "github.com/rmaia/dispatchboard/core/logger"

// Logger mirrors the core logger interface so callers wiring infra
// components need a single import.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the zerolog-backed Logger tagged with component. Output
// format follows APP_ENV, the minimum level follows SetLevel.
func New(component string) Logger {
	return NewZerologLogger(component)
}
