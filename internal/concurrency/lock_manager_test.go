package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLockSameKeyReturnsSameMutex(t *testing.T) {
	lm := NewLockManager()
	assert.Same(t, lm.GetLock("user-1"), lm.GetLock("user-1"))
	assert.NotSame(t, lm.GetLock("user-1"), lm.GetLock("user-2"))
}

func TestWithLockSerializes(t *testing.T) {
	lm := NewLockManager()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lm.WithLock("user-1", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}
