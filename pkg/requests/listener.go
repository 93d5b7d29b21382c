package requests

import "time"

// Dispatch describes one completed send, successful or not. Vetoed sends
// never produce a record.
type Dispatch struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// Listener observes completed dispatches. Listeners run on the dispatching
// goroutine, after the transport returns and before Handle callbacks fire;
// they cannot alter the outcome.
type Listener interface {
	OnDispatch(d Dispatch)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Dispatch)

// OnDispatch calls f(d).
func (f ListenerFunc) OnDispatch(d Dispatch) { f(d) }

// notify forwards the record to every listener in registration order.
func (f *Factory) notify(d Dispatch) {
	for _, l := range f.listeners {
		l.OnDispatch(d)
	}
}
