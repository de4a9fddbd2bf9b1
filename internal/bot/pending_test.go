package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingStore(t *testing.T) {
	t.Run("Put then Get returns the selection", func(t *testing.T) {
		store := newPendingStore(time.Minute)

		store.Put(100, pendingSelection{
			Website:         "winfix.live",
			PromptMessageID: 42,
			CreatedAt:       time.Now(),
		})

		sel, ok := store.Get(100)
		assert.True(t, ok)
		assert.Equal(t, "winfix.live", sel.Website)
		assert.Equal(t, 42, sel.PromptMessageID)
	})

	t.Run("Expired entries are invisible and swept", func(t *testing.T) {
		store := newPendingStore(time.Millisecond)

		store.Put(100, pendingSelection{
			Website:   "winfix.live",
			CreatedAt: time.Now().Add(-time.Second),
		})
		store.Put(101, pendingSelection{
			Website:   "ve567.live",
			CreatedAt: time.Now(),
		})

		_, ok := store.Get(100)
		assert.False(t, ok)

		removed := store.Sweep()
		assert.GreaterOrEqual(t, removed, 1)

		_, ok = store.Get(100)
		assert.False(t, ok)
	})

	t.Run("Delete removes the entry", func(t *testing.T) {
		store := newPendingStore(time.Minute)

		store.Put(100, pendingSelection{Website: "winfix.live", CreatedAt: time.Now()})
		store.Delete(100)

		_, ok := store.Get(100)
		assert.False(t, ok)
	})

	t.Run("Resubmission overwrites the previous selection", func(t *testing.T) {
		store := newPendingStore(time.Minute)

		store.Put(100, pendingSelection{Website: "winfix.live", PromptMessageID: 1, CreatedAt: time.Now()})
		store.Put(100, pendingSelection{Website: "ve777.club", PromptMessageID: 2, CreatedAt: time.Now()})

		sel, ok := store.Get(100)
		assert.True(t, ok)
		assert.Equal(t, "ve777.club", sel.Website)
		assert.Equal(t, 2, sel.PromptMessageID)
	})
}
