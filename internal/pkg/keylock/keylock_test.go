package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := New()
	const n = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock("event-1")
			defer k.Unlock("event-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, n, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := New()
	k.Lock("a")
	done := make(chan struct{})
	go func() {
		k.Lock("b")
		k.Unlock("b")
		close(done)
	}()
	<-done // key "b" must not block behind "a"
	k.Unlock("a")
}

func TestKeyedMutex_FreesIdleEntries(t *testing.T) {
	k := New()
	k.Lock("x")
	k.Unlock("x")
	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
