package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/internal/util"
)

// subscriberBuffer is how many events a slow subscriber may lag behind before
// events are dropped for it
const subscriberBuffer = 64

// Event describes one command that changed the tree
type Event struct {
	ID      string                 `json:"id"`
	Type    foldertree.CommandType `json:"type"`
	Path    string                 `json:"path,omitempty"`
	Dest    string                 `json:"dest,omitempty"`
	Key     string                 `json:"key,omitempty"`
	At      time.Time              `json:"at"`
	Outcome Outcome                `json:"outcome"`
}

type hub struct {
	mu     sync.RWMutex // held for writing while a subscriber channel is closed
	lastID atomic.Uint64
	subs   *xsync.Map[uint64, chan Event]
}

func newHub() *hub {
	return &hub{subs: xsync.NewMap[uint64, chan Event]()}
}

// publish never blocks; a subscriber with a full buffer misses the event
func (h *hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.subs.Range(func(id uint64, ch chan Event) bool {
		select {
		case ch <- ev:
		default:
			logger := util.GetLogger("Session.Events")
			logger.Warn().Uint64("subscriber", id).Str("event", ev.ID).Msg("Subscriber buffer full; dropping event")
		}
		return true
	})
}

// Subscribe registers for change events. The returned cancel func
// unsubscribes and closes the channel; it is safe to call more than once.
func (s *Session) Subscribe() (<-chan Event, func()) {
	id := s.hub.lastID.Add(1)
	ch := make(chan Event, subscriberBuffer)
	s.hub.subs.Store(id, ch)

	cancel := func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if c, ok := s.hub.subs.LoadAndDelete(id); ok {
			close(c)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscriptions
func (s *Session) SubscriberCount() int {
	return s.hub.subs.Size()
}
