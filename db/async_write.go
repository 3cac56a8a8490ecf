package db

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultChannelCapacity is the default buffer size for queued records.
const DefaultChannelCapacity = 100

// WriteHandler persists one queued record.
type WriteHandler func(ctx context.Context, rec *HashRecord) error

// ErrorHandler is told about records the handler failed to persist.
type ErrorHandler func(rec *HashRecord, err error)

// AsyncWriter persists hash records on a background goroutine so a scan does not wait
// on SQLite. Shutdown drains whatever is still queued.
type AsyncWriter struct {
	writeChan chan *HashRecord
	handler   WriteHandler
	onError   ErrorHandler
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	started   bool
	stopped   bool

	written atomic.Int64
	failed  atomic.Int64
}

// NewAsyncWriter creates a writer with DefaultChannelCapacity. onError may be nil.
func NewAsyncWriter(handler WriteHandler, onError ErrorHandler) *AsyncWriter {
	return NewAsyncWriterWithCapacity(handler, onError, DefaultChannelCapacity)
}

// NewAsyncWriterWithCapacity creates a writer with a custom queue size.
func NewAsyncWriterWithCapacity(handler WriteHandler, onError ErrorHandler, capacity int) *AsyncWriter {
	if capacity < 1 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter{
		writeChan: make(chan *HashRecord, capacity),
		handler:   handler,
		onError:   onError,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NewRepositoryWriter returns a writer that inserts through repo.
func NewRepositoryWriter(repo *Repository, onError ErrorHandler) *AsyncWriter {
	return NewAsyncWriter(repo.InsertHashRecord, onError)
}

// Start launches the background goroutine. Later calls are no-ops.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processWrites()
}

func (w *AsyncWriter) processWrites() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drainChannel()
			return
		case rec := <-w.writeChan:
			w.handle(rec)
		}
	}
}

func (w *AsyncWriter) drainChannel() {
	for {
		select {
		case rec := <-w.writeChan:
			w.handle(rec)
		default:
			return
		}
	}
}

func (w *AsyncWriter) handle(rec *HashRecord) {
	// The writer's own context is already cancelled while draining.
	if err := w.handler(context.Background(), rec); err != nil {
		w.failed.Add(1)
		if w.onError != nil {
			w.onError(rec, err)
		}
		return
	}
	w.written.Add(1)
}

// Write queues rec without blocking. It returns false when the queue is full or the
// writer has been shut down.
func (w *AsyncWriter) Write(rec *HashRecord) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}

	select {
	case w.writeChan <- rec:
		return true
	default:
		return false
	}
}

// Pending returns the number of queued records.
func (w *AsyncWriter) Pending() int {
	return len(w.writeChan)
}

// Written returns the number of records persisted successfully.
func (w *AsyncWriter) Written() int64 { return w.written.Load() }

// Failed returns the number of records the handler rejected.
func (w *AsyncWriter) Failed() int64 { return w.failed.Load() }

// Shutdown stops accepting records and waits for the queue to drain or ctx to end.
func (w *AsyncWriter) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	if !started {
		// Nothing is consuming the queue; drain inline.
		w.drainChannel()
		return nil
	}

	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StopWithTimeout is Shutdown with a fixed deadline. It reports whether the queue drained.
func (w *AsyncWriter) StopWithTimeout(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return w.Shutdown(ctx) == nil
}

// IsStarted reports whether the background goroutine is running.
func (w *AsyncWriter) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && !w.stopped
}
