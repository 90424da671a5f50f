package service

import (
	"sync"
	"time"

	"github.com/gymboard/booking-service/internal/model"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Notifier fans reservation mutations out to per-section subscribers.
// Delivery is best-effort: a subscriber that falls behind loses events,
// and correctness never depends on receiving one. Subscribers are
// expected to re-resolve slot status on receipt.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan model.InvalidationEvent
	log    *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		subs: make(map[string]map[int]chan model.InvalidationEvent),
		log:  log.Named("notifier"),
	}
}

// Subscribe registers for invalidation events scoped to one section.
// The returned cancel func must be called to release the subscription.
func (n *Notifier) Subscribe(sectionID string) (<-chan model.InvalidationEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan model.InvalidationEvent, subscriberBuffer)
	if n.subs[sectionID] == nil {
		n.subs[sectionID] = make(map[int]chan model.InvalidationEvent)
	}
	id := n.nextID
	n.nextID++
	n.subs[sectionID][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if chans, ok := n.subs[sectionID]; ok {
			if sub, ok := chans[id]; ok {
				delete(chans, id)
				close(sub)
			}
			if len(chans) == 0 {
				delete(n.subs, sectionID)
			}
		}
	}
	return ch, cancel
}

// Notify broadcasts "something changed for this section" without
// blocking; full subscriber buffers drop the event.
func (n *Notifier) Notify(sectionID string) {
	event := model.InvalidationEvent{
		SectionID:  sectionID,
		OccurredAt: time.Now().UTC(),
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, ch := range n.subs[sectionID] {
		select {
		case ch <- event:
		default:
			n.log.Debug("subscriber behind, dropping event", zap.String("section", sectionID))
		}
	}
}
