package photodna

import "time"

// Operation names reported to observers.
const (
	OpHash            = "hash"
	OpHashSubregion   = "hash_subregion"
	OpBorderDetection = "border_detection"
	OpBorderSubregion = "border_subregion"
)

// OperationEvent describes one completed hash call.
type OperationEvent struct {
	Operation   string
	Width       int
	Height      int
	PixelFormat PixelFormat
	Duration    time.Duration
	BorderFound bool
	Err         error
}

// Observer receives an event after every Generator hash operation, including failed ones.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ev OperationEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev OperationEvent)

func (f ObserverFunc) ObserveOperation(ev OperationEvent) { f(ev) }
