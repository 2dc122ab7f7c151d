// Package mock implements the generic collection store behind every mock
// service: CRUD, search and pagination over one JSON-encoded collection kept
// under a single storage key, with simulated latency and fault injection.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/taskflow/internal/kv"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Options configures a Store.
type Options[T types.Entity[T]] struct {
	// Key is the storage key holding the collection.
	Key string
	// Defaults seeds the collection when nothing is stored and is restored
	// by Reset.
	Defaults []T
	Storage  kv.Storage
	Config   *mockconfig.Store
	Logger   *log.Logger
	// NewID overrides identifier generation. Defaults to UUID v7.
	NewID func() string
}

// Store is a collection of one entity type. Read-modify-write sequences are
// serialised by a mutex, so concurrent calls behave as if issued in order.
type Store[T types.Entity[T]] struct {
	key      string
	defaults []T
	storage  kv.Storage
	config   *mockconfig.Store
	logger   *log.Logger
	newID    func() string

	mu sync.Mutex
	// memory is the JSON encoding of the latest collection. It is the
	// collection while persistence is off and the fallback while the
	// storage key is absent.
	memory []byte

	subMu   sync.Mutex
	subs    map[int]func([]T)
	nextSub int
}

// NewStore builds a store. When persistence is on and the key holds no data,
// the defaults are written immediately.
func NewStore[T types.Entity[T]](opts Options[T]) *Store[T] {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Store[T]{
		key:      opts.Key,
		defaults: cloneSlice(opts.Defaults),
		storage:  opts.Storage,
		config:   opts.Config,
		logger:   opts.Logger.With("collection", opts.Key),
		newID:    opts.NewID,
		subs:     make(map[int]func([]T)),
	}
	if s.newID == nil {
		s.newID = newUUID
	}
	s.memory = s.encode(s.defaults)

	if s.config.Persisting() {
		if stored, ok := s.readStored(); ok {
			s.memory = s.encode(stored)
		} else {
			s.SaveToStorage(s.defaults)
		}
	}
	return s
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Key returns the storage key of the collection.
func (s *Store[T]) Key() string { return s.key }

func (s *Store[T]) encode(data []T) []byte {
	if data == nil {
		data = []T{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("encoding collection failed", "err", err)
		return []byte("[]")
	}
	return encoded
}

func (s *Store[T]) decode(raw []byte) []T {
	var data []T
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("decoding in-memory collection failed", "err", err)
		return []T{}
	}
	return data
}

// readStored reads and decodes the storage key. ok is false when the key is
// absent, unreadable or corrupt; failures are logged.
func (s *Store[T]) readStored() ([]T, bool) {
	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		s.logger.Warn("reading collection failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var data []T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("stored collection is corrupt", "err", err)
		return nil, false
	}
	return data, true
}

// StoredData returns the current collection. With persistence off it is the
// in-memory collection and ok is always true. With persistence on it is read
// from storage; ok is false when the key is absent or cannot be decoded, and
// decode failures are logged rather than returned.
func (s *Store[T]) StoredData() ([]T, bool) {
	if s.config.Persisting() {
		return s.readStored()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode(s.memory), true
}

// SaveToStorage replaces the collection and notifies subscribers. With
// persistence on the collection is also written; write failures are logged
// and the in-memory copy still changes.
func (s *Store[T]) SaveToStorage(data []T) {
	s.mu.Lock()
	encoded := s.saveLocked(data)
	s.mu.Unlock()
	s.notify(encoded)
}

// saveLocked replaces the in-memory collection and writes it through when
// persisting. The caller must hold s.mu.
func (s *Store[T]) saveLocked(data []T) []byte {
	encoded := s.encode(data)
	s.memory = encoded
	if s.config.Persisting() {
		if err := s.storage.Set(s.key, string(encoded)); err != nil {
			s.logger.Warn("writing collection failed", "err", err)
		}
	}
	return encoded
}

// snapshotLocked returns the collection an operation works on: stored data
// when persisting and present, otherwise the in-memory copy. The caller must
// hold s.mu.
func (s *Store[T]) snapshotLocked() []T {
	if s.config.Persisting() {
		if data, ok := s.readStored(); ok {
			return data
		}
	}
	return s.decode(s.memory)
}

func (s *Store[T]) current() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T]) delay(ctx context.Context) error {
	return Delay(ctx, s.config)
}

func (s *Store[T]) debug(msg string, keyvals ...any) {
	if s.config.LoggingEnabled() {
		s.logger.Debug(msg, keyvals...)
	}
}

// rmw runs fn on the current collection under the lock and saves the result
// when fn returns save=true.
func (s *Store[T]) rmw(fn func(items []T) (out []T, save bool, err error)) error {
	s.mu.Lock()
	out, save, err := fn(s.snapshotLocked())
	if err != nil || !save {
		s.mu.Unlock()
		return err
	}
	encoded := s.saveLocked(out)
	s.mu.Unlock()

	s.notify(encoded)
	return nil
}

// Create assigns a fresh ID to item, appends it and returns the stored copy.
func (s *Store[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.delay(ctx); err != nil {
		return zero, err
	}
	created := item.WithEntityID(s.newID())
	err := s.rmw(func(items []T) ([]T, bool, error) {
		return append(items, created), true, nil
	})
	if err != nil {
		return zero, err
	}
	s.debug("created", "id", created.EntityID())
	return created, nil
}

// Update applies fn to the entity with the given ID and stores the result.
// fn cannot change the ID; an error from fn aborts the update unchanged.
// Returns types.ErrNotFound when id is absent.
func (s *Store[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero, updated T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	if err := s.delay(ctx); err != nil {
		return zero, err
	}
	err := s.rmw(func(items []T) ([]T, bool, error) {
		for i := range items {
			if items[i].EntityID() != id {
				continue
			}
			next := items[i]
			if err := fn(&next); err != nil {
				return nil, false, err
			}
			items[i] = next.WithEntityID(id)
			updated = items[i]
			return items, true, nil
		}
		return nil, false, fmt.Errorf("%s %s: %w", s.key, id, types.ErrNotFound)
	})
	if err != nil {
		return zero, err
	}
	s.debug("updated", "id", id)
	return updated, nil
}

// Delete removes the entity with the given ID. Returns types.ErrNotFound when
// nothing was removed.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if err := s.delay(ctx); err != nil {
		return err
	}
	err := s.rmw(func(items []T) ([]T, bool, error) {
		kept := items[:0]
		for _, it := range items {
			if it.EntityID() != id {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return nil, false, fmt.Errorf("%s %s: %w", s.key, id, types.ErrNotFound)
		}
		return kept, true, nil
	})
	if err != nil {
		return err
	}
	s.debug("deleted", "id", id)
	return nil
}

// Get returns the entity with the given ID or types.ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	if err := s.delay(ctx); err != nil {
		return zero, err
	}
	for _, it := range s.current() {
		if it.EntityID() == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%s %s: %w", s.key, id, types.ErrNotFound)
}

// List returns the whole collection in stored order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.current(), nil
}

// ListPage returns one page of the collection.
func (s *Store[T]) ListPage(ctx context.Context, page, limit int) (types.Page[T], error) {
	if page < 1 || limit < 1 {
		return types.Page[T]{}, types.ErrInvalidPagination
	}
	items, err := s.List(ctx)
	if err != nil {
		return types.Page[T]{}, err
	}
	return types.Paginate(items, page, limit)
}

// Filter returns the entities for which keep returns true, in stored order.
func (s *Store[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Search returns the entities where any string produced by fields contains
// term, ignoring case. An empty term matches everything.
func (s *Store[T]) Search(ctx context.Context, term string, fields func(T) []string) ([]T, error) {
	return s.Filter(ctx, Matcher(term, fields))
}

// SearchPage is Search followed by pagination.
func (s *Store[T]) SearchPage(ctx context.Context, term string, fields func(T) []string, page, limit int) (types.Page[T], error) {
	if page < 1 || limit < 1 {
		return types.Page[T]{}, types.ErrInvalidPagination
	}
	items, err := s.Search(ctx, term, fields)
	if err != nil {
		return types.Page[T]{}, err
	}
	return types.Paginate(items, page, limit)
}

// Matcher builds the case-insensitive substring predicate used by Search.
func Matcher[T any](term string, fields func(T) []string) func(T) bool {
	fold := cases.Fold()
	needle := fold.String(term)
	return func(it T) bool {
		if needle == "" {
			return true
		}
		for _, f := range fields(it) {
			if strings.Contains(fold.String(f), needle) {
				return true
			}
		}
		return false
	}
}

// Reset replaces the collection with the defaults.
func (s *Store[T]) Reset(ctx context.Context) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.SaveToStorage(s.defaults)
	s.debug("reset to defaults", "count", len(s.defaults))
	return nil
}

// LoadTestData replaces the collection with data.
func (s *Store[T]) LoadTestData(ctx context.Context, data []T) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.SaveToStorage(data)
	s.debug("loaded data", "count", len(data))
	return nil
}

// SimulateError draws against the configured error rate and returns a
// *types.MockError on a hit, nil otherwise.
func (s *Store[T]) SimulateError(opts ...FaultOption) error {
	err := SimulateError(s.config, opts...)
	if err != nil {
		s.debug("simulated fault", "err", err)
	}
	return err
}

// Subscribe registers fn for every successful mutation. fn receives a copy of
// the full collection. Only later mutations are delivered.
func (s *Store[T]) Subscribe(fn func([]T)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store[T]) notify(encoded []byte) {
	s.subMu.Lock()
	subs := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(s.decode(encoded))
	}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
