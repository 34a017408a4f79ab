package log

import "context"

// MockLogger nuốt mọi log, dùng trong test
type MockLogger struct{}

func NewMockLogger() (*MockLogger, error) {
	return &MockLogger{}, nil
}

func (l *MockLogger) Info(ctx context.Context, format string, args ...interface{})     {}
func (l *MockLogger) Warn(ctx context.Context, format string, args ...interface{})     {}
func (l *MockLogger) Error(ctx context.Context, format string, args ...interface{})    {}
func (l *MockLogger) Debug(ctx context.Context, format string, args ...interface{})    {}
func (l *MockLogger) Critical(ctx context.Context, format string, args ...interface{}) {}
