package shutdown

import (
	"context"

	"go.uber.org/zap"

	"go_photodna/core"
	"go_photodna/logging"
)

// CloseFunc adapts a Close method into a cleanup step that logs its outcome.
func CloseFunc(logger *logging.Logger, name string, closeFn func() error) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if err := closeFn(); err != nil {
			return err
		}
		logger.Debug("Closed", zap.String("component", name))
		return nil
	}
}

// DrainFunc adapts a context-aware stop method, such as an async writer's Shutdown.
func DrainFunc(logger *logging.Logger, name string, drain func(ctx context.Context) error) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if err := drain(ctx); err != nil {
			return err
		}
		logger.Debug("Drained", zap.String("component", name))
		return nil
	}
}

// SyncLogger flushes the logger and closes its file. It is normally the last step.
func SyncLogger(logger *logging.Logger) core.ShutdownFunc {
	return func(ctx context.Context) error {
		return logger.Close()
	}
}
