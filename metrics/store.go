package metrics

import (
	"sync"
	"time"

	"go_photodna/photodna"
)

// DefaultHistoryCapacity is the number of recent operations a Store keeps.
const DefaultHistoryCapacity = 100

// Store keeps a circular history of recent operations plus running aggregates. It is a
// photodna.Observer.
//
//	store := metrics.NewStore(100, time.Now())
//	gen, err := photodna.NewGenerator(photodna.GeneratorOptions{}.WithObserver(store))
//	...
//	fmt.Println(store.Summary().TotalOperations)
type Store struct {
	mu sync.RWMutex

	history []OperationRecord
	cap     int
	head    int
	size    int

	total   int64
	errors  int64
	borders int64
	byKind  map[string]int64
	byOp    map[string]*opStats

	startTime time.Time
}

type opStats struct {
	count         int64
	errors        int64
	totalDuration time.Duration
}

// NewStore creates a Store keeping the last capacity operations.
func NewStore(capacity int, startTime time.Time) *Store {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &Store{
		history:   make([]OperationRecord, capacity),
		cap:       capacity,
		byKind:    make(map[string]int64),
		byOp:      make(map[string]*opStats),
		startTime: startTime,
	}
}

// ObserveOperation records a Generator event.
func (s *Store) ObserveOperation(ev photodna.OperationEvent) {
	rec := OperationRecord{
		Operation:   ev.Operation,
		Width:       ev.Width,
		Height:      ev.Height,
		PixelFormat: ev.PixelFormat.String(),
		Status:      StatusSuccess,
		BorderFound: ev.BorderFound,
		Duration:    ev.Duration,
		Time:        time.Now(),
	}
	if ev.Err != nil {
		rec.Status = StatusError
		rec.ErrorKind = errorKindLabel(ev.Err)
	}
	s.Record(rec)
}

// Record adds rec to the history and aggregates.
func (s *Store) Record(rec OperationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = rec
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}

	s.total++
	stats, ok := s.byOp[rec.Operation]
	if !ok {
		stats = &opStats{}
		s.byOp[rec.Operation] = stats
	}
	stats.count++
	stats.totalDuration += rec.Duration

	if rec.Status == StatusError {
		s.errors++
		stats.errors++
		s.byKind[rec.ErrorKind]++
	}
	if rec.BorderFound {
		s.borders++
	}
}

// Summary returns the aggregates.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		TotalOperations: s.total,
		TotalErrors:     s.errors,
		BordersFound:    s.borders,
		ErrorsByKind:    make(map[string]int64, len(s.byKind)),
		ByOperation:     make(map[string]*OperationStats, len(s.byOp)),
		Uptime:          time.Since(s.startTime),
	}
	for kind, n := range s.byKind {
		sum.ErrorsByKind[kind] = n
	}
	for op, stats := range s.byOp {
		st := &OperationStats{Count: stats.count, Errors: stats.errors}
		if stats.count > 0 {
			st.SuccessRate = float64(stats.count-stats.errors) / float64(stats.count) * 100
			st.AvgDuration = stats.totalDuration / time.Duration(stats.count)
		}
		sum.ByOperation[op] = st
	}
	return sum
}

// Recent returns up to limit of the most recent operations, oldest first.
func (s *Store) Recent(limit int) []OperationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.size == 0 {
		return []OperationRecord{}
	}
	if limit > s.size {
		limit = s.size
	}

	result := make([]OperationRecord, limit)
	for i := 0; i < limit; i++ {
		idx := (s.head - limit + i + s.cap) % s.cap
		result[i] = s.history[idx]
	}
	return result
}

// errorKindLabel names the photodna error kind of err, or "other" for foreign errors.
func errorKindLabel(err error) string {
	if kind := photodna.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "other"
}

var _ photodna.Observer = (*Store)(nil)
