// Package backend wires the mock backend together: it opens the key-value
// storage named by a types.Config, loads the simulation config, generates the
// default dataset, and builds the stores, services and dataset manager on top.
package backend

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/taskflow/internal/dataset"
	"github.com/mesh-intelligence/taskflow/internal/generator"
	"github.com/mesh-intelligence/taskflow/internal/kv"
	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/internal/service"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Options tunes a Backend. The zero value is usable.
type Options struct {
	Logger *log.Logger
	// Dataset shapes the generated defaults. A zero value means
	// generator.DefaultDatasetOptions.
	Dataset generator.DatasetOptions
	// Now is the clock for generated dates and timestamps. Defaults to
	// time.Now.
	Now func() time.Time
}

// Backend owns every store and service of one attached storage.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	opts     Options
	config   types.Config

	storage    kv.Storage
	sim        *mockconfig.Store
	gen        *generator.Generator
	tasks      *service.TaskService
	users      *service.UserService
	workspaces *service.WorkspaceService
	teams      *service.TeamService
	auth       *service.AuthService
	data       *dataset.Manager
}

// New creates a detached backend. Call Attach to open storage.
func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dataset == (generator.DatasetOptions{}) {
		opts.Dataset = generator.DefaultDatasetOptions()
	}
	return &Backend{opts: opts}
}

// Attach opens the storage described by cfg and builds every service.
// Returns types.ErrAlreadyAttached if already attached.
func (b *Backend) Attach(cfg types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := b.opts.Dataset.Validate(); err != nil {
		return err
	}
	storage, err := kv.Open(cfg)
	if err != nil {
		return err
	}

	logger := b.opts.Logger
	rng := random.New(b.opts.Dataset.Seed)
	sim := mockconfig.New(storage, rng, logger)
	gen := generator.New(rng, generator.WithClock(b.opts.Now))
	defaults, err := gen.CohesiveDataset(b.opts.Dataset)
	if err != nil {
		storage.Close()
		return fmt.Errorf("generating default dataset: %w", err)
	}

	stores := dataset.Stores{
		Tasks:      mock.NewStore(mock.Options[types.Task]{Key: types.KeyTasks, Defaults: defaults.Tasks, Storage: storage, Config: sim, Logger: logger}),
		Users:      mock.NewStore(mock.Options[types.User]{Key: types.KeyUsers, Defaults: defaults.Users, Storage: storage, Config: sim, Logger: logger}),
		Workspaces: mock.NewStore(mock.Options[types.Workspace]{Key: types.KeyWorkspaces, Defaults: defaults.Workspaces, Storage: storage, Config: sim, Logger: logger}),
		Teams:      mock.NewStore(mock.Options[types.Team]{Key: types.KeyTeams, Defaults: defaults.Teams, Storage: storage, Config: sim, Logger: logger}),
	}
	data, err := dataset.New(stores, sim, b.opts.Now)
	if err != nil {
		storage.Close()
		return err
	}

	deps := service.Deps{Config: sim, Logger: logger, Now: b.opts.Now}
	b.users = service.NewUserService(stores.Users, deps)
	b.tasks = service.NewTaskService(stores.Tasks, deps)
	b.workspaces = service.NewWorkspaceService(stores.Workspaces, b.users, deps)
	b.teams = service.NewTeamService(stores.Teams, deps)
	b.auth = service.NewAuthService(b.users, storage, deps)

	b.storage = storage
	b.sim = sim
	b.gen = gen
	b.data = data
	b.config = cfg
	b.attached = true
	logger.Debug("backend attached", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return nil
}

// Detach closes the storage. After Detach every accessor returns
// types.ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.storage.Close()
	b.attached = false
	b.storage = nil
	b.sim = nil
	b.gen = nil
	b.tasks, b.users, b.workspaces, b.teams, b.auth = nil, nil, nil, nil, nil
	b.data = nil
	if err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}

// Attached reports whether Attach has succeeded and Detach has not run since.
func (b *Backend) Attached() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attached
}

// StorageConfig returns the Config passed to Attach.
func (b *Backend) StorageConfig() (types.Config, error) {
	return get(b, func() types.Config { return b.config })
}

func get[T any](b *Backend, field func() T) (T, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		var zero T
		return zero, types.ErrDetached
	}
	return field(), nil
}

// Tasks returns the task service.
func (b *Backend) Tasks() (*service.TaskService, error) {
	return get(b, func() *service.TaskService { return b.tasks })
}

// Users returns the user service.
func (b *Backend) Users() (*service.UserService, error) {
	return get(b, func() *service.UserService { return b.users })
}

// Workspaces returns the workspace service.
func (b *Backend) Workspaces() (*service.WorkspaceService, error) {
	return get(b, func() *service.WorkspaceService { return b.workspaces })
}

// Teams returns the team service.
func (b *Backend) Teams() (*service.TeamService, error) {
	return get(b, func() *service.TeamService { return b.teams })
}

// Auth returns the auth service.
func (b *Backend) Auth() (*service.AuthService, error) {
	return get(b, func() *service.AuthService { return b.auth })
}

// Config returns the simulation config store.
func (b *Backend) Config() (*mockconfig.Store, error) {
	return get(b, func() *mockconfig.Store { return b.sim })
}

// Dataset returns the import, export and stats manager.
func (b *Backend) Dataset() (*dataset.Manager, error) {
	return get(b, func() *dataset.Manager { return b.data })
}

// Seed generates a fresh cohesive dataset with opts and loads it into every
// collection, replacing what is there. The defaults restored by Reset are not
// changed.
func (b *Backend) Seed(ctx context.Context, opts generator.DatasetOptions) (generator.Dataset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return generator.Dataset{}, types.ErrDetached
	}
	ds, err := b.gen.CohesiveDataset(opts)
	if err != nil {
		return generator.Dataset{}, err
	}
	if err := b.users.Store().LoadTestData(ctx, ds.Users); err != nil {
		return generator.Dataset{}, err
	}
	if err := b.workspaces.Store().LoadTestData(ctx, ds.Workspaces); err != nil {
		return generator.Dataset{}, err
	}
	if err := b.tasks.Store().LoadTestData(ctx, ds.Tasks); err != nil {
		return generator.Dataset{}, err
	}
	if err := b.teams.Store().LoadTestData(ctx, ds.Teams); err != nil {
		return generator.Dataset{}, err
	}
	b.opts.Logger.Debug("dataset seeded", "seed", opts.Seed, "users", len(ds.Users), "tasks", len(ds.Tasks))
	return ds, nil
}
