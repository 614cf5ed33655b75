package core

import (
	"runtime"

	"go.uber.org/zap"
)

// DefaultConcurrency is the bound used when a config leaves MaxConcurrency
// unset: twice the available hardware parallelism.
func DefaultConcurrency() int {
	return 2 * runtime.GOMAXPROCS(0)
}

// Concurrency normalizes a configured bound, falling back to the default.
func Concurrency(n int) int {
	if n > 0 {
		return n
	}
	return DefaultConcurrency()
}

// Logger normalizes an optional logger to a usable one.
func Logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
