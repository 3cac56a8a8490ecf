// Package metrics records hash operation statistics: Prometheus collectors for export,
// an in-memory Store for summaries printed by the CLI, and a Fanout that feeds both from
// a single Generator observer.
package metrics

import "time"

// Status values for OperationRecord.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OperationRecord is one hash operation as seen by the Store.
type OperationRecord struct {
	Operation   string        `json:"operation"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	PixelFormat string        `json:"pixel_format"`
	Status      string        `json:"status"`
	ErrorKind   string        `json:"error_kind,omitempty"`
	BorderFound bool          `json:"border_found"`
	Duration    time.Duration `json:"duration"`
	Time        time.Time     `json:"time"`
}

// OperationStats aggregates one operation name.
type OperationStats struct {
	Count       int64         `json:"count"`
	Errors      int64         `json:"errors"`
	SuccessRate float64       `json:"success_rate"` // 0-100
	AvgDuration time.Duration `json:"avg_duration"`
}

// Summary aggregates everything a Store has seen.
type Summary struct {
	TotalOperations int64                      `json:"total_operations"`
	TotalErrors     int64                      `json:"total_errors"`
	BordersFound    int64                      `json:"borders_found"`
	ErrorsByKind    map[string]int64           `json:"errors_by_kind"`
	ByOperation     map[string]*OperationStats `json:"by_operation"`
	Uptime          time.Duration              `json:"uptime"`
}
