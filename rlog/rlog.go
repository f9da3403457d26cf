// Package rlog provides the package-level structured logger the
// orchestrator and its subsystems call into, mirroring the zap setup
// convention of the reference renderer this module's teacher was
// compared against: console encoding in development, JSON in
// production, never blocking or allocating on the per-fragment path.
package rlog

import "go.uber.org/zap"

// L is the process-wide logger. It starts as a no-op discard logger
// so packages can log before Init runs (e.g. from init() functions or
// tests) without a nil check at every call site.
var L = zap.NewNop()

// Level selects the development/production encoder pair Init builds.
type Level int

const (
	LevelDevelopment Level = iota
	LevelProduction
)

// Init builds the process logger for the given level, replacing L.
func Init(level Level) error {
	var cfg zap.Config
	switch level {
	case LevelProduction:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	L = logger
	return nil
}

// Sync flushes any buffered log entries; callers defer it after Init.
func Sync() error {
	return L.Sync()
}
