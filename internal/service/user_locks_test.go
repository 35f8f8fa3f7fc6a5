package service

import (
	"sync"
	"testing"
	"time"

	"maang_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLockExclusive(t *testing.T) {
	reg := NewUserLockRegistry()

	require.NoError(t, reg.Acquire(1, time.Second))
	err := reg.Acquire(1, 10*time.Millisecond)
	assert.ErrorIs(t, err, util.ErrBusy)

	reg.Release(1)
	assert.NoError(t, reg.Acquire(1, time.Second))
	reg.Release(1)
}

func TestUserLocksIndependentPerUser(t *testing.T) {
	reg := NewUserLockRegistry()

	require.NoError(t, reg.Acquire(1, time.Second))
	assert.NoError(t, reg.Acquire(2, 10*time.Millisecond))
	reg.Release(1)
	reg.Release(2)
}

func TestUserLockWaitsForRelease(t *testing.T) {
	reg := NewUserLockRegistry()
	require.NoError(t, reg.Acquire(7, time.Second))

	done := make(chan error, 1)
	go func() {
		done <- reg.Acquire(7, 2*time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	reg.Release(7)
	assert.NoError(t, <-done)
	reg.Release(7)
}

func TestUserLockSerializesCounter(t *testing.T) {
	reg := NewUserLockRegistry()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, reg.Acquire(3, 5*time.Second)) {
				return
			}
			defer reg.Release(3)
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, counter)
}
