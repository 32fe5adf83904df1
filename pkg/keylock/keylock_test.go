package keylock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medisched/scheduler-api/pkg/keylock"
)

func TestLockSerializesSameKey(t *testing.T) {
	kl := keylock.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("slot:a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockIndependentKeys(t *testing.T) {
	kl := keylock.New()

	unlockA := kl.Lock("slot:a")
	defer unlockA()

	// a different key must not block
	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("slot:b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked")
	}
}

func TestLockMultipleKeys(t *testing.T) {
	kl := keylock.New()

	unlock := kl.Lock("slot:a", "slot:b", "appointment:c")

	acquired := make(chan struct{})
	go func() {
		u := kl.Lock("slot:b")
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("held key was acquired while locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("key not released by unlock")
	}
}

func TestLockReentryAfterUnlock(t *testing.T) {
	kl := keylock.New()

	for i := 0; i < 10; i++ {
		unlock := kl.Lock("slot:a", "appointment:b")
		unlock()
	}
}

func TestLockConcurrentOrderedPairs(t *testing.T) {
	kl := keylock.New()

	// every goroutine takes the same two keys in the same order; with a
	// fixed order this must terminate
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("slot:a", "slot:b")
			time.Sleep(time.Microsecond)
			unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ordered lock pairs deadlocked")
	}
}
