package lock

import (
	"sync"
	"testing"
)

func TestWithLockSerializesSameKey(t *testing.T) {
	kl := NewKeyedLock()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = kl.WithLock("same", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 serialized increments, got %d", counter)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	kl := NewKeyedLock()

	kl.Lock("a")
	defer kl.Unlock("a")

	if !kl.TryLock("b") {
		t.Fatal("lock on key a must not block key b")
	}
	kl.Unlock("b")
}

func TestTryLockHeldKey(t *testing.T) {
	kl := NewKeyedLock()

	kl.Lock("a")
	if kl.TryLock("a") {
		t.Fatal("TryLock must fail while the key is held")
	}
	kl.Unlock("a")

	if !kl.TryLock("a") {
		t.Fatal("TryLock must succeed once the key is released")
	}
	kl.Unlock("a")
}
