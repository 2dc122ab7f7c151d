// Package taskflow is the public entry point of the simulated TaskFlow
// backend. It exposes the backend factory and names the service types so
// callers outside this module can use them.
//
// Example:
//
//	b := taskflow.NewBackend(taskflow.Options{})
//	err := b.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/tmp/taskflow",
//	})
//	defer b.Detach()
//	tasks, _ := b.Tasks()
//	overdue, _ := tasks.Overdue(ctx)
package taskflow

import (
	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/internal/dataset"
	"github.com/mesh-intelligence/taskflow/internal/generator"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/internal/service"
)

// Version is the release of this module.
const Version = "0.3.0"

// Backend lifecycle and options.
type (
	Backend        = backend.Backend
	Options        = backend.Options
	DatasetOptions = generator.DatasetOptions
	Dataset        = generator.Dataset
)

// Services and their inputs.
type (
	TaskService      = service.TaskService
	TaskFilter       = service.TaskFilter
	TaskPatch        = service.TaskPatch
	UserService      = service.UserService
	UserPatch        = service.UserPatch
	WorkspaceService = service.WorkspaceService
	WorkspacePatch   = service.WorkspacePatch
	TeamService      = service.TeamService
	TeamPatch        = service.TeamPatch
	AuthService      = service.AuthService
	Registration     = service.Registration
	ConfigStore      = mockconfig.Store
	DatasetManager   = dataset.Manager
	Document         = dataset.Document
	Stats            = dataset.Stats
)

// DemoPassword is the password Login accepts for every user.
const DemoPassword = service.DemoPassword

// NewBackend creates a detached backend. Call Attach with a types.Config to
// open storage.
func NewBackend(opts Options) *Backend {
	return backend.New(opts)
}

// DefaultDatasetOptions returns the sizes and seed of the default dataset.
func DefaultDatasetOptions() DatasetOptions {
	return generator.DefaultDatasetOptions()
}
