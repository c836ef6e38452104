package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MutationState is the lifecycle of one write
type MutationState string

const (
	MutationIdle       MutationState = "idle"
	MutationPending    MutationState = "pending"
	MutationCommitted  MutationState = "committed"
	MutationRolledBack MutationState = "rolled_back"
)

// MutationResult is the final outcome of an update
type MutationResult struct {
	MutationID string
	Outcome    MutationState
	Entry      domain.Entry
	Err        error
}

// PendingMutation tracks an update whose store write may still be in flight
type PendingMutation struct {
	ID      string
	EntryID string

	mu     sync.Mutex
	state  MutationState
	result MutationResult
	done   chan struct{}
}

func newPendingMutation(entryID string) *PendingMutation {
	return &PendingMutation{
		ID:      uuid.NewString(),
		EntryID: entryID,
		state:   MutationIdle,
		done:    make(chan struct{}),
	}
}

func (p *PendingMutation) State() MutationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the mutation committed or rolled back
func (p *PendingMutation) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the mutation resolves
func (p *PendingMutation) Wait() MutationResult {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

func (p *PendingMutation) setPending() {
	p.mu.Lock()
	p.state = MutationPending
	p.mu.Unlock()
}

func (p *PendingMutation) resolve(outcome MutationState, e domain.Entry, err error) {
	p.mu.Lock()
	p.state = outcome
	p.result = MutationResult{MutationID: p.ID, Outcome: outcome, Entry: e, Err: err}
	p.mu.Unlock()
	close(p.done)
}

// Confirmer gates a delete before any request is sent
type Confirmer interface {
	Confirm(ctx context.Context, id string) bool
}

type ConfirmFunc func(ctx context.Context, id string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, id string) bool {
	return f(ctx, id)
}

// Confirmed and Declined are fixed answers for callers that already asked
var (
	Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	Declined  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)

// MutationCoordinator runs create, update and delete against the store and
// keeps the query cache in step with them. Concurrent writes to one id are
// neither queued nor merged; the last write the store sees wins.
type MutationCoordinator struct {
	store    repository.MutableStore
	cache    *QueryCache
	notifier Notifier
	logger   *zap.Logger
	inflight sync.WaitGroup
}

func NewMutationCoordinator(store repository.MutableStore, queryCache *QueryCache, notifier Notifier, logger *zap.Logger) *MutationCoordinator {
	return &MutationCoordinator{
		store:    store,
		cache:    queryCache,
		notifier: notifier,
		logger:   logger,
	}
}

// Create stores a new user-created entry and returns the key the store
// assigned. Nothing is cached before the store accepts it.
func (c *MutationCoordinator) Create(ctx context.Context, e domain.Entry) (string, error) {
	e.ID = ""
	e.Origin = domain.OriginUserCreated
	e = domain.NormalizeEntry(e)
	if err := e.Validate(); err != nil {
		return "", err
	}

	id, err := c.store.Create(ctx, domain.Serialize(e))
	if err != nil {
		err = mutationFailed(err)
		c.logger.Warn("create failed", zap.String("name", e.Name), zap.Error(err))
		return "", err
	}

	e.ID = id
	c.cache.Entries.Set(EntryKey(id), e)
	c.cache.Lists.Invalidate(ListKey)
	c.notifier.Publish(domain.Event{Type: domain.EventEntryCreated, ID: id, Entry: &e})

	c.logger.Info("entry created", zap.String("id", id), zap.String("name", e.Name))
	return id, nil
}

// Update writes e into the cache before returning, then replaces the stored
// document in the background. If the store rejects it, the cached entry and
// its slot in the merged list go back to what they held before.
func (c *MutationCoordinator) Update(ctx context.Context, id string, e domain.Entry) *PendingMutation {
	p := newPendingMutation(id)

	if id == "" {
		p.resolve(MutationRolledBack, domain.Entry{}, fmt.Errorf("%w: missing id", domain.ErrInvalidEntry))
		return p
	}
	if !domain.OriginForID(id).Mutable() {
		p.resolve(MutationRolledBack, domain.Entry{}, fmt.Errorf("%w: %s", domain.ErrReadOnly, id))
		return p
	}

	e.ID = id
	e.Origin = domain.OriginUserCreated
	e = domain.NormalizeEntry(e)
	if err := e.Validate(); err != nil {
		p.resolve(MutationRolledBack, e, err)
		return p
	}

	key := EntryKey(id)
	entrySnap := c.cache.Entries.Snapshot(key)
	listSnap := c.cache.Lists.Snapshot(ListKey)

	c.cache.Entries.Set(key, e)
	c.cache.Lists.Update(ListKey, func(list []domain.Entry, present bool) ([]domain.Entry, bool) {
		if !present {
			return nil, false
		}
		return replaceEntry(list, e)
	})
	p.setPending()

	// In-flight writes are never cancelled, even if the caller goes away.
	bg := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		if _, err := c.store.Replace(bg, id, domain.Serialize(e)); err != nil {
			err = mutationFailed(err)
			c.rollback(key, entrySnap, listSnap, id)
			c.logger.Warn("update rolled back",
				zap.String("mutation", p.ID),
				zap.String("id", id),
				zap.Error(err))
			c.notifier.Publish(domain.Event{Type: domain.EventEntryRolledBack, ID: id, Error: err.Error()})
			p.resolve(MutationRolledBack, e, err)
			return
		}

		c.logger.Info("update committed", zap.String("mutation", p.ID), zap.String("id", id))
		c.notifier.Publish(domain.Event{Type: domain.EventEntryUpdated, ID: id, Entry: &e})
		p.resolve(MutationCommitted, e, nil)
	}()

	return p
}

func (c *MutationCoordinator) rollback(key string, entrySnap EntrySnapshot, listSnap ListSnapshot, id string) {
	c.cache.Entries.Restore(key, entrySnap)

	if !listSnap.Present {
		return
	}
	previous, found := findEntry(listSnap.Value, id)
	if !found {
		return
	}
	c.cache.Lists.Update(ListKey, func(list []domain.Entry, present bool) ([]domain.Entry, bool) {
		if !present {
			return nil, false
		}
		return replaceEntry(list, previous)
	})
}

// Delete removes a user-created entry once confirm agrees. A declined
// confirmation sends nothing and returns false with no error. The cache is
// only touched after the store confirms the delete.
func (c *MutationCoordinator) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: missing id", domain.ErrInvalidEntry)
	}
	if !domain.OriginForID(id).Mutable() {
		return false, fmt.Errorf("%w: %s", domain.ErrReadOnly, id)
	}
	if confirm == nil || !confirm.Confirm(ctx, id) {
		c.logger.Debug("delete declined", zap.String("id", id))
		return false, nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		err = mutationFailed(err)
		c.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return false, err
	}

	c.cache.Entries.Invalidate(EntryKey(id))
	c.cache.Lists.Invalidate(ListKey)
	c.notifier.Publish(domain.Event{Type: domain.EventEntryDeleted, ID: id})

	c.logger.Info("entry deleted", zap.String("id", id))
	return true, nil
}

// Wait blocks until every background store write has finished
func (c *MutationCoordinator) Wait() {
	c.inflight.Wait()
}

func mutationFailed(err error) error {
	if errors.Is(err, domain.ErrMutationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrMutationFailed, err)
}
