package ledger

import (
	"errors"
	"fmt"
)

// ErrLocked is returned by Lock when another writer holds the ledger.
var ErrLocked = errors.New("ledger is locked by another ingestion run")

// Lock acquires the exclusive writer lock without blocking. Callers must hold
// the lock across the AlreadyIngested/Record sequence of an ingestion run.
func (s *Store) Lock() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, s.lock.Path())
	}
	return nil
}

// Unlock releases the writer lock. It is a no-op when the lock is not held.
func (s *Store) Unlock() error {
	if !s.lock.Locked() {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release ledger lock: %w", err)
	}
	return nil
}
