// Package mockconfig holds the simulation parameters shared by every mock
// store: latency bounds, fault rate, per-service switches and the persistence
// toggle.
//
// The store has three persistence modes. Switching persistence off moves it
// from Persistent to Transitioning, installs the new config in memory, purges
// every key under types.StoragePrefix (the config key included), and only then
// enters Ephemeral. A failed purge leaves the store in Transitioning and the
// next update that keeps persistence off retries it. Switching persistence on
// writes the config immediately and returns to Persistent.
package mockconfig

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/taskflow/internal/kv"
	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Mode is the persistence state of the configuration.
type Mode int

const (
	Persistent Mode = iota
	Transitioning
	Ephemeral
)

func (m Mode) String() string {
	switch m {
	case Persistent:
		return "persistent"
	case Transitioning:
		return "transitioning"
	case Ephemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Store owns one SimulationConfig. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage kv.Storage
	rng     *random.Rand
	logger  *log.Logger
	cfg     types.SimulationConfig
	mode    Mode

	subs    map[int]func(types.SimulationConfig)
	nextSub int
}

// New loads the stored configuration, falling back to defaults when the key
// is absent, unreadable or invalid. rng drives delays and fault injection.
func New(storage kv.Storage, rng *random.Rand, logger *log.Logger) *Store {
	s := &Store{
		storage: storage,
		rng:     rng,
		logger:  logger,
		subs:    make(map[int]func(types.SimulationConfig)),
	}
	s.cfg = s.load()
	if s.cfg.PersistToLocalStorage {
		s.mode = Persistent
	} else {
		s.mode = Ephemeral
	}
	return s
}

// load merges the stored config over the defaults.
func (s *Store) load() types.SimulationConfig {
	cfg := types.DefaultSimulationConfig()
	raw, ok, err := s.storage.Get(types.KeyConfig)
	if err != nil {
		s.logger.Warn("reading mock config failed, using defaults", "err", err)
		return cfg
	}
	if !ok {
		return cfg
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Warn("stored mock config is corrupt, using defaults", "err", err)
		return types.DefaultSimulationConfig()
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("stored mock config is invalid, using defaults", "err", err)
		return types.DefaultSimulationConfig()
	}
	return cfg
}

// Get returns a copy of the current configuration.
func (s *Store) Get() types.SimulationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Mode returns the current persistence mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Persisting reports whether collections should read and write storage.
// Only the Persistent mode persists; Transitioning behaves as in-memory.
func (s *Store) Persisting() bool {
	return s.Mode() == Persistent
}

// Update merges patch into the configuration and applies the persistence
// transition implied by the merged PersistToLocalStorage. Validation failures
// wrap types.ErrInvalidConfig and leave the configuration unchanged. The
// returned config is the one in effect after the call.
func (s *Store) Update(patch types.ConfigPatch) (types.SimulationConfig, error) {
	s.mu.Lock()
	next := patch.Apply(s.cfg)
	if err := next.Validate(); err != nil {
		cur := s.cfg.Clone()
		s.mu.Unlock()
		return cur, err
	}
	s.cfg = next

	var err error
	if next.PersistToLocalStorage {
		s.writeLocked()
		s.mode = Persistent
	} else if s.mode != Ephemeral {
		err = s.purgeLocked()
	}
	out := s.cfg.Clone()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(out.Clone())
	}
	return out, err
}

// Reset restores the default configuration through Update.
func (s *Store) Reset() (types.SimulationConfig, error) {
	return s.Update(types.PatchFrom(types.DefaultSimulationConfig()))
}

// writeLocked persists the config. Failures are logged, not returned.
func (s *Store) writeLocked() {
	data, err := json.Marshal(s.cfg)
	if err != nil {
		s.logger.Warn("encoding mock config failed", "err", err)
		return
	}
	if err := s.storage.Set(types.KeyConfig, string(data)); err != nil {
		s.logger.Warn("writing mock config failed", "err", err)
	}
}

// purgeLocked runs the Transitioning phase: the new config is already in
// memory, so every stored key can go.
func (s *Store) purgeLocked() error {
	s.mode = Transitioning
	n, err := kv.RemovePrefix(s.storage, types.StoragePrefix)
	if err != nil {
		s.logger.Warn("purging stored mock data failed", "removed", n, "err", err)
		return fmt.Errorf("purging stored data: %w", err)
	}
	s.mode = Ephemeral
	s.logger.Debug("persistence disabled, stored mock data purged", "removed", n)
	return nil
}

// IsServiceEnabled reports whether the named service is switched on.
// Services missing from the map are enabled.
func (s *Store) IsServiceEnabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	enabled, ok := s.cfg.EnabledServices[name]
	return !ok || enabled
}

// LoggingEnabled reports the EnableLogging switch.
func (s *Store) LoggingEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.EnableLogging
}

// RandomDelay returns a duration uniformly drawn from [DelayMin, DelayMax]
// milliseconds.
func (s *Store) RandomDelay() time.Duration {
	s.mu.Lock()
	lo, hi := s.cfg.DelayMin, s.cfg.DelayMax
	s.mu.Unlock()
	if hi <= 0 {
		return 0
	}
	ms := s.rng.Float(float64(lo), float64(hi))
	return time.Duration(ms * float64(time.Millisecond))
}

// ShouldSimulateError runs one Bernoulli trial with probability ErrorRate.
func (s *Store) ShouldSimulateError() bool {
	s.mu.Lock()
	rate := s.cfg.ErrorRate
	s.mu.Unlock()
	return s.rng.Bool(rate)
}

// Subscribe registers fn for every configuration change. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(types.SimulationConfig)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) subscribersLocked() []func(types.SimulationConfig) {
	out := make([]func(types.SimulationConfig), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
