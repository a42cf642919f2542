// Package logging builds the zap logger the CLI wires into the engine.
// Default output is a log file next to the database so terminal output stays
// clean for the actual UI.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to path. Debug lowers the level and adds
// caller info; a failure to open the file falls back to a no-op logger
// rather than breaking the app over its own diagnostics.
func New(path string, debug bool) *zap.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zap.NewNop()
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	opts := []zap.Option{}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

// DefaultLogPath puts the log beside the database file.
func DefaultLogPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "ngp.log")
}

// Sync flushes buffered entries; sync errors on plain files are not
// actionable, so they are dropped.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
