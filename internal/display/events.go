package display

import "sync"

// Event types pushed to views.
const (
	EventReset  = "reset"  // new song loaded
	EventActive = "active" // active line changed
	EventState  = "state"  // play/pause or source changed
)

// Event is one session change. Scroll asks the view to bring the active
// line into the vertical center of its scroll container.
type Event struct {
	Type   string `json:"type"`
	State  State  `json:"state"`
	Scroll bool   `json:"scroll,omitempty"`
}

// Subscriber receives session events.
type Subscriber struct {
	C    chan Event
	done chan struct{}
}

// Done is closed when the subscriber is removed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// hub fans events out to subscribers. Slow subscribers lose events
// rather than stall the session.
type hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*Subscriber]struct{})}
}

func (h *hub) subscribe() *Subscriber {
	s := &Subscriber{
		C:    make(chan Event, 32),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *hub) unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.done)
	}
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.C <- e:
		default:
		}
	}
}
