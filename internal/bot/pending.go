package bot

import (
	"sync"
	"time"
)

// pendingSelection tracks a user who picked a website and owes us a username
// reply. PromptMessageID ties the eventual reply back to our force-reply
// prompt.
type pendingSelection struct {
	Website         string
	PromptMessageID int
	CreatedAt       time.Time
}

// pendingStore holds pending selections in process memory. Entries expire
// after ttl so an abandoned prompt does not pin the map forever; a restart
// drops all in-flight prompts, which users recover from by re-selecting.
type pendingStore struct {
	mu         sync.RWMutex
	ttl        time.Duration
	selections map[int64]pendingSelection
}

func newPendingStore(ttl time.Duration) *pendingStore {
	return &pendingStore{
		ttl:        ttl,
		selections: make(map[int64]pendingSelection),
	}
}

func (p *pendingStore) Put(userID int64, sel pendingSelection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selections[userID] = sel
}

func (p *pendingStore) Get(userID int64) (pendingSelection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sel, ok := p.selections[userID]
	if !ok {
		return pendingSelection{}, false
	}
	if time.Since(sel.CreatedAt) > p.ttl {
		return pendingSelection{}, false
	}
	return sel, true
}

func (p *pendingStore) Delete(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.selections, userID)
}

// Sweep drops expired entries and reports how many were removed.
func (p *pendingStore) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for userID, sel := range p.selections {
		if time.Since(sel.CreatedAt) > p.ttl {
			delete(p.selections, userID)
			removed++
		}
	}
	return removed
}
