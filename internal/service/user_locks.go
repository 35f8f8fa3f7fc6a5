package service

import (
	"maang_tracker_backend/internal/util"
	"sync"
	"time"
)

// UserLockRegistry serializes writes per user. Each user owns one logical
// critical section covering event append, mastery recompute and the derived
// state write; operations for different users interleave freely.
//
// The registry is owned by the application and handed to the services that
// need it; nothing here is process-global.
type UserLockRegistry struct {
	mu    sync.Mutex
	locks map[uint]chan struct{}
}

func NewUserLockRegistry() *UserLockRegistry {
	return &UserLockRegistry{locks: make(map[uint]chan struct{})}
}

func (r *UserLockRegistry) lockChan(userID uint) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.locks[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[userID] = ch
	}
	return ch
}

// Acquire takes the user's lock, waiting at most maxWait. Returns
// util.ErrBusy when the wait expires; the caller surfaces that as a
// retryable conflict.
func (r *UserLockRegistry) Acquire(userID uint, maxWait time.Duration) error {
	ch := r.lockChan(userID)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return util.ErrBusy
	}
}

func (r *UserLockRegistry) Release(userID uint) {
	ch := r.lockChan(userID)
	select {
	case <-ch:
	default:
	}
}
