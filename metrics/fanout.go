package metrics

import "go_photodna/photodna"

// Fanout forwards every event to each observer in order.
type Fanout []photodna.Observer

// NewFanout drops nil observers.
func NewFanout(observers ...photodna.Observer) Fanout {
	f := make(Fanout, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			f = append(f, o)
		}
	}
	return f
}

func (f Fanout) ObserveOperation(ev photodna.OperationEvent) {
	for _, o := range f {
		o.ObserveOperation(ev)
	}
}
