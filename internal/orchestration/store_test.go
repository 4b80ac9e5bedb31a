package orchestration

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_PutGetDelete(t *testing.T) {
	store := NewInMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	session := &Session{ID: "s1", OriginalPrompt: "p"}
	store.Put(session)

	got, ok := store.Get("s1")
	require.True(t, ok)
	assert.Same(t, session, got)
	assert.Equal(t, 1, store.Len())

	store.Delete("s1")
	_, ok = store.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	// deleting a missing id is a no-op
	store.Delete("s1")
}

func TestInMemoryStore_Claim(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(&Session{ID: "s1", Status: StatusAwaitingClarification})

	session, claimed := store.Claim("missing", StatusAwaitingClarification, StatusRefining)
	assert.Nil(t, session)
	assert.False(t, claimed)

	session, claimed = store.Claim("s1", StatusAwaitingClarification, StatusRefining)
	require.NotNil(t, session)
	assert.True(t, claimed)
	assert.Equal(t, StatusRefining, session.Status)

	// the transition is single-shot
	session, claimed = store.Claim("s1", StatusAwaitingClarification, StatusRefining)
	require.NotNil(t, session)
	assert.False(t, claimed)
	assert.Equal(t, StatusRefining, session.Status)
}

func TestInMemoryStore_ClaimIsExclusive(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(&Session{ID: "s1", Status: StatusAwaitingClarification})

	var wg sync.WaitGroup
	wins := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, claimed := store.Claim("s1", StatusAwaitingClarification, StatusRefining); claimed {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

func TestInMemoryStore_ConcurrentSessions(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			store.Put(&Session{ID: id})
			_, ok := store.Get(id)
			assert.True(t, ok)
			store.Delete(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, store.Len())
}
