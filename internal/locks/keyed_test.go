package locks_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"complitracker/internal/locks"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := locks.NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("docusign:ext-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	km := locks.NewKeyedMutex()

	unlockA := km.Lock("docusign:ext-1")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("adobe_sign:ext-1")
		unlockB()
		close(done)
	}()

	<-done
}

func TestKeyedMutex_Reacquire(t *testing.T) {
	km := locks.NewKeyedMutex()

	unlock := km.Lock("k")
	unlock()

	unlock = km.Lock("k")
	unlock()
}
