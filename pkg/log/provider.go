package log

import (
	"context"
	"log/slog"
	"sync"
)

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

func (l *slogLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

func (l *slogLogger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, fields...)
}

func (l *slogLogger) Error(msg string, fields ...any) {
	l.logger.Error(msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// slogProvider is the default LoggerProvider backed by slog's default logger.
type slogProvider struct {
	level slog.LevelVar
}

func (p *slogProvider) GetLogger() Logger {
	return &slogLogger{logger: slog.Default()}
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{logger: slog.Default().With(ComponentKey, name)}
}

func (p *slogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = &slogProvider{}
)

// SetProvider replaces the package-level LoggerProvider. Pass a
// TestLoggerProvider in tests to capture output.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
// The name is attached under ComponentKey.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}
