package generator

import (
	"fmt"

	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// DatasetOptions sizes a cohesive dataset.
type DatasetOptions struct {
	UserCount      int
	WorkspaceCount int
	TaskCount      int
	TeamCount      int
	Seed           int64
}

// DefaultDatasetOptions returns the sizes used for the stores' default data.
func DefaultDatasetOptions() DatasetOptions {
	return DatasetOptions{
		UserCount:      10,
		WorkspaceCount: 3,
		TaskCount:      25,
		TeamCount:      4,
		Seed:           random.DefaultSeed,
	}
}

// Dataset is a generated bundle with consistent cross-references.
type Dataset struct {
	Users      []types.User      `json:"users"`
	Workspaces []types.Workspace `json:"workspaces"`
	Tasks      []types.Task      `json:"tasks"`
	Teams      []types.Team      `json:"teams"`
}

// maxWorkspaceMembers caps the random member subset of a workspace.
const maxWorkspaceMembers = 6

// assignRate is the share of tasks that receive an assignee.
const assignRate = 0.8

// Validate checks that the counts can produce a consistent dataset.
func (o DatasetOptions) Validate() error {
	if o.UserCount < 0 || o.WorkspaceCount < 0 || o.TaskCount < 0 || o.TeamCount < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidOptions)
	}
	if o.WorkspaceCount > 0 && o.UserCount == 0 {
		return fmt.Errorf("%w: workspaces need at least one user", ErrInvalidOptions)
	}
	if (o.TaskCount > 0 || o.TeamCount > 0) && o.WorkspaceCount == 0 {
		return fmt.Errorf("%w: tasks and teams need at least one workspace", ErrInvalidOptions)
	}
	return nil
}

// CohesiveDataset reseeds the generator with opts.Seed and builds users, then
// workspaces with owners and members drawn from those users, then tasks
// placed in those workspaces and assigned only to members of their own
// workspace, then teams drawn from one workspace's members. The draw order is
// fixed, so equal options under a frozen clock give equal datasets.
func (g *Generator) CohesiveDataset(opts DatasetOptions) (Dataset, error) {
	if err := opts.Validate(); err != nil {
		return Dataset{}, err
	}
	g.rng.Reseed(opts.Seed)

	users := make([]types.User, opts.UserCount)
	for i := range users {
		users[i] = g.User(fmt.Sprintf("user_%d", i+1))
	}

	workspaces := make([]types.Workspace, opts.WorkspaceCount)
	for i := range workspaces {
		workspaces[i] = g.populateWorkspace(g.Workspace(fmt.Sprintf("workspace_%d", i+1)), users)
	}

	tasks := make([]types.Task, opts.TaskCount)
	for i := range tasks {
		ws := random.Pick(g.rng, workspaces)
		var assignee string
		if g.rng.Bool(assignRate) {
			assignee = random.Pick(g.rng, ws.Members).UserID
		}
		tasks[i] = g.Task(TaskOptions{
			ID:          fmt.Sprintf("task_%d", i+1),
			AssigneeID:  assignee,
			WorkspaceID: ws.ID,
		})
	}

	teams := make([]types.Team, opts.TeamCount)
	for i := range teams {
		ws := random.Pick(g.rng, workspaces)
		teams[i] = g.Team(TeamOptions{
			ID:   fmt.Sprintf("team_%d", i+1),
			Pool: ws.MemberIDs(),
		})
	}

	return Dataset{
		Users:      users,
		Workspaces: workspaces,
		Tasks:      tasks,
		Teams:      teams,
	}, nil
}

// populateWorkspace assigns an owner and a random member subset. The owner is
// always the first member, with the admin role.
func (g *Generator) populateWorkspace(ws types.Workspace, users []types.User) types.Workspace {
	owner := random.Pick(g.rng, users)
	count := g.rng.Int(2, min(maxWorkspaceMembers, len(users)))
	picked := random.Subset(g.rng, users, count)

	ws.OwnerID = owner.ID
	ws.Members = []types.WorkspaceMember{{
		UserID:   owner.ID,
		Role:     types.RoleAdmin,
		JoinedAt: ws.CreatedAt,
	}}
	for _, u := range picked {
		if u.ID == owner.ID {
			continue
		}
		ws.Members = append(ws.Members, types.WorkspaceMember{
			UserID:   u.ID,
			Role:     random.Weighted(g.rng, memberRoleWeights),
			JoinedAt: g.between(ws.CreatedAt, g.now()),
		})
	}
	return ws
}
