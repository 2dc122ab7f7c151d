// Package dataset moves whole collections in and out of the mock backend:
// JSON export and import of tasks and configuration, aggregate statistics,
// and a reset of every collection to its seeded defaults.
package dataset

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://taskflow.local/schema/export.json"

// Document is the interchange format written by Export.
type Document struct {
	Timestamp time.Time              `json:"timestamp"`
	Config    types.SimulationConfig `json:"config"`
	Data      Data                   `json:"data"`
}

// Data holds the exported collections.
type Data struct {
	Tasks []types.Task `json:"tasks"`
}

// importDocument is the shape Import accepts: config is a partial update and
// data.tasks may be absent.
type importDocument struct {
	Config *types.ConfigPatch `json:"config"`
	Data   *struct {
		Tasks *[]types.Task `json:"tasks"`
	} `json:"data"`
}

// ImportResult reports what Import changed.
type ImportResult struct {
	Tasks         int  `json:"tasks"`
	TasksReplaced bool `json:"tasksReplaced"`
	ConfigMerged  bool `json:"configMerged"`
}

// Stores groups the collections the manager works on.
type Stores struct {
	Tasks      *mock.Store[types.Task]
	Users      *mock.Store[types.User]
	Workspaces *mock.Store[types.Workspace]
	Teams      *mock.Store[types.Team]
}

// Manager runs whole-dataset operations.
type Manager struct {
	stores Stores
	config *mockconfig.Store
	now    func() time.Time
	schema *jsonschema.Schema
}

// New builds a manager. now stamps exports and decides overdue tasks in
// Stats; nil means time.Now.
func New(stores Stores, config *mockconfig.Store, now func() time.Time) (*Manager, error) {
	if now == nil {
		now = time.Now
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Manager{stores: stores, config: config, now: now, schema: schema}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add export schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile export schema: %w", err)
	}
	return schema, nil
}

// Export snapshots the configuration and the task collection.
func (m *Manager) Export(ctx context.Context) (Document, error) {
	tasks, err := m.stores.Tasks.List(ctx)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Timestamp: m.now().UTC().Truncate(time.Second),
		Config:    m.config.Get(),
		Data:      Data{Tasks: tasks},
	}, nil
}

// ExportJSON is Export rendered as indented JSON.
func (m *Manager) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := m.Export(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return out, nil
}

// Import applies a document produced by Export, or a hand-written subset of
// one. The config section is merged into the current configuration first, so
// a persistence switch in it decides where the tasks land. data.tasks, when
// present, replaces the task collection wholesale. A document without a data
// section fails with types.ErrMissingData; one that breaks the schema fails
// with types.ErrInvalidData and changes nothing.
func (m *Manager) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return ImportResult{}, fmt.Errorf("%w: document must be a JSON object", types.ErrInvalidData)
	}
	if d, ok := obj["data"]; !ok || d == nil {
		return ImportResult{}, types.ErrMissingData
	}
	if err := m.schema.Validate(generic); err != nil {
		return ImportResult{}, schemaError(err)
	}

	var doc importDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	var tasks []types.Task
	if doc.Data.Tasks != nil {
		tasks = *doc.Data.Tasks
		if err := uniqueIDs(tasks); err != nil {
			return ImportResult{}, err
		}
	}

	var res ImportResult
	if doc.Config != nil {
		if _, err := m.config.Update(*doc.Config); err != nil {
			return res, err
		}
		res.ConfigMerged = true
	}
	if doc.Data.Tasks != nil {
		if err := m.stores.Tasks.LoadTestData(ctx, tasks); err != nil {
			return res, err
		}
		res.Tasks = len(tasks)
		res.TasksReplaced = true
	}
	return res, nil
}

func uniqueIDs(tasks []types.Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %q", types.ErrInvalidData, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// schemaError reduces a validation failure to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%w: %s: %s", types.ErrInvalidData, loc, ve.Message)
}

// ResetAll restores every collection to its defaults. The configuration is
// left alone.
func (m *Manager) ResetAll(ctx context.Context) error {
	if err := m.stores.Tasks.Reset(ctx); err != nil {
		return err
	}
	if err := m.stores.Users.Reset(ctx); err != nil {
		return err
	}
	if err := m.stores.Workspaces.Reset(ctx); err != nil {
		return err
	}
	return m.stores.Teams.Reset(ctx)
}
