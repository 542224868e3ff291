package filter

import (
	"context"
	"fmt"
	"sync"

	"spendlens/internal/log"
)

// Persistence is the durable key-value capability the store writes the
// active spec through. Implementations must survive process restart.
type Persistence interface {
	LoadFilterSpec(ctx context.Context) ([]byte, error)
	SaveFilterSpec(ctx context.Context, data []byte) error
}

// Listener receives the new spec after every successful write.
type Listener func(Spec)

// Store owns the single live filter specification for a session. It is
// an observable cell: mutations go through Update/Reset, are persisted,
// and then broadcast exactly once to every subscriber. Reads never block
// writers for long; the spec itself is a small value object.
//
// There is one logical writer (the active session), so last-write-wins
// on the persisted spec is acceptable.
type Store struct {
	mu        sync.Mutex
	spec      Spec
	persist   Persistence
	listeners []Listener
}

// NewStore creates a store seeded from persistence. A missing or
// malformed persisted payload yields the all-empty default spec; loading
// never fails the caller.
func NewStore(ctx context.Context, persist Persistence) *Store {
	s := &Store{persist: persist}
	if persist == nil {
		return s
	}
	data, err := persist.LoadFilterSpec(ctx)
	if err != nil {
		logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentFilter)
		logger.WarnContext(ctx, "Failed to load persisted filter spec, using defaults", log.FieldError, err)
		return s
	}
	s.spec = Decode(data)
	return s
}

// Current returns a copy of the active spec.
func (s *Store) Current() Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Subscribe registers a listener for spec changes. Listeners are invoked
// synchronously, after persistence, once per successful write.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Update merges a partial patch into the active spec, persists the result
// and notifies subscribers. The persistence failure is returned but the
// in-memory spec is still updated and broadcast; the session keeps
// working, only durability is degraded.
func (s *Store) Update(ctx context.Context, p Patch) error {
	s.mu.Lock()
	s.spec = s.spec.Merge(p).sanitize()
	spec := s.spec
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	err := s.save(ctx, spec)
	for _, l := range listeners {
		l(spec)
	}
	return err
}

// Reset restores the all-empty default spec, persists it and notifies
// subscribers.
func (s *Store) Reset(ctx context.Context) error {
	return s.Update(ctx, Patch{
		DateRange:     &DateRange{},
		Categories:    &[]string{},
		Subcategories: &[]string{},
		Suppliers:     &[]string{},
		Locations:     &[]string{},
		Years:         &[]string{},
		AmountRange:   &AmountRange{},
	})
}

func (s *Store) save(ctx context.Context, spec Spec) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveFilterSpec(ctx, spec.Encode()); err != nil {
		return fmt.Errorf("persist filter spec: %w", err)
	}
	return nil
}
