package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go_photodna/core"
	"go_photodna/logging"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 30 * time.Second

// Manager ties together the operation tracker, the cleanup registry and signal handling.
//
//	m := shutdown.NewManager(logger)
//	m.Register("generator", shutdown.PriorityGenerator, shutdown.CloseFunc(logger, "generator", gen.Close))
//	m.Start()
//	defer m.Shutdown()
//
//	err := m.WrapOperation(ctx, "hash", func(ctx context.Context) error { ... })
type Manager struct {
	logger   *logging.Logger
	timeout  time.Duration
	exit     func(code int)
	mu       sync.Mutex
	started  bool
	shutdown bool

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *OperationTracker
	registry *Registry
	signals  *SignalCounter

	sigChan chan os.Signal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout sets the shutdown timeout. Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// WithExitFunc replaces os.Exit for the forced exit on a second signal.
func WithExitFunc(exit func(code int)) ManagerOption {
	return func(m *Manager) {
		m.exit = exit
	}
}

// NewManager creates a Manager whose context is cancelled by the first SIGINT/SIGTERM
// once Start is called. A second signal exits immediately with the signal's exit code.
func NewManager(logger *logging.Logger, opts ...ManagerOption) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		logger:   logger,
		timeout:  DefaultTimeout,
		exit:     os.Exit,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  NewOperationTracker(),
		registry: NewRegistry(),
		sigChan:  make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.signals = NewSignalCounter(2, func(sig os.Signal) {
		m.logger.Warn("Received second signal, forcing exit", zap.String("signal", sig.String()))
		_ = m.logger.Sync()
		m.exit(core.ExitCodeForSignal(sig))
	})
	return m
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function. Lower priorities run first.
func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("Registered shutdown handler",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Start listens for SIGINT and SIGTERM. Later calls are no-ops.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range m.sigChan {
			m.HandleSignal(sig)
		}
	}()
}

// HandleSignal processes one signal as if it had been delivered to the process.
func (m *Manager) HandleSignal(sig os.Signal) {
	if m.signals.Record(sig) == 1 {
		m.logger.Info("Received shutdown signal, finishing in-flight operations",
			zap.String("signal", sig.String()),
		)
		m.cancel()
	}
}

// Interrupted reports whether a shutdown signal has been received.
func (m *Manager) Interrupted() bool {
	return m.signals.Count() > 0
}

// ExitCode returns the exit code for the first signal received, or core.ExitCodeSuccess.
func (m *Manager) ExitCode() int {
	if sig := m.signals.First(); sig != nil {
		return core.ExitCodeForSignal(sig)
	}
	return core.ExitCodeSuccess
}

// Shutdown stops new operations, waits for running ones, then runs the cleanup
// functions with the remaining time. Only the first call does anything.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	started := m.started
	m.mu.Unlock()

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.cancel()
	m.tracker.Close()

	if active := m.tracker.ActiveCount(); active > 0 {
		m.logger.Info("Waiting for in-flight operations", zap.Int64("active_count", active))
	}
	if err := m.tracker.Wait(ctx); err != nil {
		m.logger.Warn("Timeout waiting for in-flight operations",
			zap.Duration("waited", time.Since(startTime)),
			zap.Int64("remaining_ops", m.tracker.ActiveCount()),
		)
	}

	// Cleanup gets at least a second even if draining used up the budget.
	cleanupCtx := ctx
	if deadline, _ := ctx.Deadline(); time.Until(deadline) < time.Second {
		var cleanupCancel context.CancelFunc
		cleanupCtx, cleanupCancel = context.WithTimeout(context.Background(), time.Second)
		defer cleanupCancel()
	}

	m.logger.Debug("Executing cleanup functions", zap.Strings("handlers", m.registry.Names()))
	errs := m.registry.Shutdown(cleanupCtx)
	for _, err := range errs {
		m.logger.Error("Cleanup function failed", zap.Error(err))
	}

	if started {
		signal.Stop(m.sigChan)
		close(m.sigChan)
	}

	m.logger.Debug("Shutdown completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("error_count", len(errs)),
		zap.Int64("operations_completed", m.tracker.CompletedCount()),
	)
	return errors.Join(errs...)
}

// WrapOperation runs fn as a tracked operation. It returns ErrTrackerClosed once shutdown
// has begun, and the context error if ctx or the manager's context is already done.
func (m *Manager) WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	if !m.tracker.Start() {
		m.logger.Debug("Operation rejected, shutting down", zap.String("operation", name))
		return ErrTrackerClosed
	}
	defer m.tracker.Done()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return context.Canceled
	default:
	}
	return fn(ctx)
}

// ActiveOperations returns the number of running operations.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.ActiveCount()
}

// IsShuttingDown reports whether Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

// RegisteredHandlers returns cleanup names in execution order.
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}
