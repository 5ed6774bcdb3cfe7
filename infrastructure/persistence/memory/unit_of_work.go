package memory

import (
	"context"
	"errors"
	"sync"
)

// UnitOfWork implements transactions over the in-memory store by
// snapshotting the record maps on Begin and restoring them on Rollback.
type UnitOfWork struct {
	store *Store

	mu     sync.Mutex
	active bool

	flows map[string]flowRecord
	nodes map[string]nodeRecord
	edges map[string]edgeRecord
}

// NewUnitOfWork creates a unit of work bound to a store
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin starts a transaction by snapshotting the current store state
func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return errors.New("transaction already active")
	}

	u.store.mu.Lock()
	u.flows, u.nodes, u.edges = u.store.snapshot()
	u.store.mu.Unlock()

	u.active = true
	return nil
}

// Commit discards the snapshot, keeping all writes made since Begin
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return errors.New("no active transaction")
	}
	u.flows, u.nodes, u.edges = nil, nil, nil
	u.active = false
	return nil
}

// Rollback restores the snapshot taken at Begin. After a successful
// commit this is a no-op.
func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return nil
	}

	u.store.mu.Lock()
	u.store.restore(u.flows, u.nodes, u.edges)
	u.store.mu.Unlock()

	u.flows, u.nodes, u.edges = nil, nil, nil
	u.active = false
	return nil
}
