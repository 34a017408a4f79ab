package log

import (
	"context"
	"log"
)

// CslLogger ghi log ra console với prefix theo level
type CslLogger struct{}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{}, nil
}

func (l *CslLogger) logf(level, format string, args ...interface{}) {
	log.Printf("["+level+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logf("INFO", format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logf("WARN", format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logf("ERROR", format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logf("DEBUG", format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.logf("CRITICAL", format, args...)
}
