package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the service logger. Production gets JSON output at info level,
// everything else the human-readable development encoder at debug level.
func New(appEnv, name string) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)

	switch appEnv {
	case "production", "prod":
		l, err = zap.NewProduction()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return l.Named(name), nil
}

// OrNop keeps constructors nil-safe.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
