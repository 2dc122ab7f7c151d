// Package generator produces synthetic users, tasks, workspaces and teams for
// demos and tests. All randomness comes from an injected random.Rand, and the
// clock is injectable, so a fixed seed and a frozen clock give byte-identical
// output.
package generator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// ErrInvalidOptions is returned when dataset counts cannot be satisfied.
var ErrInvalidOptions = errors.New("invalid dataset options")

const day = 24 * time.Hour

// Generator builds entities from a seeded random source.
type Generator struct {
	rng *random.Rand
	now func() time.Time

	mu  sync.Mutex
	seq int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock used for created/updated/due dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a Generator drawing from rng.
func New(rng *random.Rand, opts ...Option) *Generator {
	g := &Generator{
		rng: rng,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rand exposes the underlying random source.
func (g *Generator) Rand() *random.Rand {
	return g.rng
}

// nextID returns a generator-local identifier for entities created without one.
func (g *Generator) nextID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s_gen_%d", prefix, g.seq)
}

// daysAgo returns a time between minDays and maxDays days before now, at
// whole-second precision.
func (g *Generator) daysAgo(minDays, maxDays int) time.Time {
	offset := time.Duration(g.rng.Int(minDays, maxDays)) * day
	return g.now().Add(-offset).Truncate(time.Second)
}

// between returns a time uniformly placed between from and to.
func (g *Generator) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	return from.Add(time.Duration(g.rng.Float(0, 1) * float64(span))).Truncate(time.Second)
}

// User generates a user. An empty id is replaced by a generated one.
func (g *Generator) User(id string) types.User {
	if id == "" {
		id = g.nextID("user")
	}
	first := random.Pick(g.rng, firstNames)
	last := random.Pick(g.rng, lastNames)
	domain := random.Pick(g.rng, companyDomains)
	avatar := g.rng.Int(1, 70)
	role := random.Weighted(g.rng, userRoleWeights)
	created := g.daysAgo(1, 90)

	return types.User{
		ID:        id,
		Email:     strings.ToLower(first + "." + last + "@" + domain),
		FirstName: first,
		LastName:  last,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?img=%d", avatar),
		Role:      role,
		CreatedAt: created,
		UpdatedAt: g.between(created, g.now()),
	}
}

// Users generates n users with generated IDs.
func (g *Generator) Users(n int) []types.User {
	users := make([]types.User, n)
	for i := range users {
		users[i] = g.User("")
	}
	return users
}

// TaskOptions fixes fields of a generated task. Empty fields are generated.
type TaskOptions struct {
	ID          string
	Status      string
	Priority    string
	AssigneeID  string
	WorkspaceID string
	TeamID      string
}

// Task generates a task. Overrides in opts are used as given and consume no
// random draws.
func (g *Generator) Task(opts TaskOptions) types.Task {
	id := opts.ID
	if id == "" {
		id = g.nextID("task")
	}
	title := random.Pick(g.rng, taskTitles)
	description := random.Pick(g.rng, taskDescriptions)

	status := opts.Status
	if status == "" {
		status = random.Weighted(g.rng, statusWeights)
	}
	priority := opts.Priority
	if priority == "" {
		priority = random.Weighted(g.rng, priorityWeights)
	}

	var due *time.Time
	if g.rng.Bool(0.6) {
		d := g.now().Add(time.Duration(g.rng.Int(1, 30)) * day).Truncate(time.Second)
		due = &d
	}
	created := g.daysAgo(1, 60)

	return types.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  opts.AssigneeID,
		WorkspaceID: opts.WorkspaceID,
		TeamID:      opts.TeamID,
		DueDate:     due,
		CreatedAt:   created,
		UpdatedAt:   g.between(created, g.now()),
	}
}

// Tasks generates n tasks sharing the non-ID fields of opts.
func (g *Generator) Tasks(n int, opts TaskOptions) []types.Task {
	opts.ID = ""
	tasks := make([]types.Task, n)
	for i := range tasks {
		tasks[i] = g.Task(opts)
	}
	return tasks
}

// Workspace generates a workspace with no owner and no members.
func (g *Generator) Workspace(id string) types.Workspace {
	if id == "" {
		id = g.nextID("workspace")
	}
	name := random.Pick(g.rng, workspaceNames)
	description := random.Pick(g.rng, workspaceDescriptions)
	created := g.daysAgo(30, 180)

	return types.Workspace{
		ID:          id,
		Name:        name,
		Description: description,
		Members:     []types.WorkspaceMember{},
		CreatedAt:   created,
		UpdatedAt:   g.between(created, g.now()),
	}
}

// TeamOptions supplies the member pool for a generated team.
type TeamOptions struct {
	ID string
	// Pool holds the candidate member user IDs. Must not be empty.
	Pool []string
}

// Team generates a team whose members are a random subset of opts.Pool and
// whose leader is one of those members.
func (g *Generator) Team(opts TeamOptions) types.Team {
	id := opts.ID
	if id == "" {
		id = g.nextID("team")
	}
	name := random.Pick(g.rng, teamNames)
	description := random.Pick(g.rng, teamDescriptions)
	members := random.Subset(g.rng, opts.Pool, g.rng.Int(1, len(opts.Pool)))
	leader := random.Pick(g.rng, members)
	created := g.daysAgo(7, 120)
	updated := g.between(created, g.now())

	return types.Team{
		TeamID:      id,
		Name:        name,
		Description: description,
		LeaderID:    leader,
		MemberIDs:   members,
		CreatedAt:   created,
		UpdatedAt:   &updated,
	}
}
