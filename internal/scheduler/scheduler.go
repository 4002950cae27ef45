package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Payload identifies the scheduled work to the callback.
type Payload struct {
	Kind string
	ID   string
}

// Scheduler is the external timer collaborator used by delayed letter
// delivery.
type Scheduler interface {
	Schedule(at time.Time, payload Payload) (string, error)
	Cancel(handle string)
}

// InProcess runs scheduled callbacks on in-process timers. Handles are
// opaque UUIDs.
type InProcess struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	callback func(Payload)
}

func NewInProcess(callback func(Payload)) *InProcess {
	return &InProcess{
		timers:   make(map[string]*time.Timer),
		callback: callback,
	}
}

func (s *InProcess) Schedule(at time.Time, payload Payload) (string, error) {
	handle := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[handle] = time.AfterFunc(time.Until(at), func() {
		s.mu.Lock()
		delete(s.timers, handle)
		s.mu.Unlock()
		if s.callback != nil {
			s.callback(payload)
		}
	})
	return handle, nil
}

// Cancel stops the timer for the handle. Unknown handles are ignored; the
// cleanup sweeps cancel handles that may have already fired.
func (s *InProcess) Cancel(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[handle]; ok {
		t.Stop()
		delete(s.timers, handle)
	}
}
