package journal

import (
	"github.com/samvad-hq/samvad-httpkit/internal/logger"
	"github.com/samvad-hq/samvad-httpkit/pkg/requests"
)

// Recorder adapts a Store to the dispatch listener seam so every completed
// send lands in the journal.
type Recorder struct {
	store Store
}

// NewRecorder wraps the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// OnDispatch appends the record. Append failures are logged and dropped;
// a broken journal must not disturb dispatching.
func (r *Recorder) OnDispatch(d requests.Dispatch) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Append(d); err != nil {
		logger.WarnObj("journal append failed", "error", err)
	}
}
