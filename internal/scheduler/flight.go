package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrPassInProgress = errors.New("generation_pass_in_progress")

const runLockKey = "rebill:scheduler:generation_pass"

// acquireFlight takes the local single-flight guard and, when a Redis
// locker is configured, the cross-replica lock as well. The returned
// release func is safe to call exactly once.
func (s *Scheduler) acquireFlight(ctx context.Context) (func(), error) {
	if !s.passMu.TryLock() {
		return nil, ErrPassInProgress
	}

	if s.locker == nil {
		return s.passMu.Unlock, nil
	}

	token, ok, err := s.locker.TryLock(ctx, runLockKey, s.cfg.LockTTL)
	if err != nil {
		// Redis being down must not stop billing. Fall back to the
		// local guard and let the operator see the warning.
		s.log.Warn("run lock unavailable, proceeding with local guard only", zap.Error(err))
		return s.passMu.Unlock, nil
	}
	if !ok {
		s.passMu.Unlock()
		return nil, ErrPassInProgress
	}

	release := func() {
		if relErr := s.locker.Release(context.WithoutCancel(ctx), runLockKey, token); relErr != nil {
			s.log.Warn("run lock release failed, lock will expire by TTL", zap.Error(relErr))
		}
		s.passMu.Unlock()
	}
	return release, nil
}
