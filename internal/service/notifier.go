package service

import (
	"sync"

	"github.com/google/uuid"
)

const (
	EventWeekClosed  = "WEEK_CLOSED"
	EventMonthClosed = "MONTH_CLOSED"
)

type RollupEvent struct {
	ID      uuid.UUID      `json:"id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// RollupNotifier fans rollup events out to connected dashboard sockets. Slow
// subscribers are skipped rather than blocking a close operation.
type RollupNotifier struct {
	mu   sync.Mutex
	subs map[uuid.UUID]chan RollupEvent
}

func NewRollupNotifier() *RollupNotifier {
	return &RollupNotifier{
		subs: make(map[uuid.UUID]chan RollupEvent),
	}
}

func (n *RollupNotifier) Subscribe() (uuid.UUID, <-chan RollupEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New()
	ch := make(chan RollupEvent, 8)
	n.subs[id] = ch
	return id, ch
}

func (n *RollupNotifier) Unsubscribe(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subs[id]; ok {
		close(ch)
		delete(n.subs, id)
	}
}

func (n *RollupNotifier) Publish(eventType string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	event := RollupEvent{
		ID:      uuid.New(),
		Type:    eventType,
		Payload: payload,
	}
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
