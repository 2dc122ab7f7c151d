package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// TeamPatch lists the fields Update may change.
type TeamPatch struct {
	Name        *string
	Description *string
}

// TeamService manages teams. A team's leader is always one of its members.
type TeamService struct {
	store *mock.Store[types.Team]
	deps  Deps
}

// NewTeamService wraps store.
func NewTeamService(store *mock.Store[types.Team], deps Deps) *TeamService {
	return &TeamService{store: store, deps: deps.withDefaults()}
}

// Store exposes the underlying collection.
func (s *TeamService) Store() *mock.Store[types.Team] { return s.store }

func (s *TeamService) guard() error {
	return guard(s.deps.Config, types.ServiceTeams, s.store.SimulateError)
}

// Create stores a new team. The leader is added to the members when missing.
func (s *TeamService) Create(ctx context.Context, in types.Team) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	if in.Name == "" {
		return types.Team{}, invalid("team name is required")
	}
	if in.LeaderID == "" {
		return types.Team{}, invalid("team leader is required")
	}
	members := []string{in.LeaderID}
	for _, id := range in.MemberIDs {
		if id != "" && !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	in.MemberIDs = members
	in.CreatedAt = s.deps.now()
	in.UpdatedAt = nil
	return s.store.Create(ctx, in)
}

// Get returns one team.
func (s *TeamService) Get(ctx context.Context, id string) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	return s.store.Get(ctx, id)
}

// Update renames or redescribes a team.
func (s *TeamService) Update(ctx context.Context, id string, patch TeamPatch) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return types.Team{}, invalid("team name is required")
	}
	return s.mutate(ctx, id, func(t *types.Team) error {
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		return nil
	})
}

func (s *TeamService) mutate(ctx context.Context, id string, fn func(*types.Team) error) (types.Team, error) {
	now := s.deps.now()
	return s.store.Update(ctx, id, func(t *types.Team) error {
		if err := fn(t); err != nil {
			return err
		}
		t.UpdatedAt = &now
		return nil
	})
}

// Delete removes a team.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns every team.
func (s *TeamService) List(ctx context.Context) ([]types.Team, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// ListForUser returns the teams userID belongs to.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]types.Team, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.Filter(ctx, func(t types.Team) bool { return t.HasMember(userID) })
}

// AddMember appends userID to the team.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	if userID == "" {
		return types.Team{}, types.ErrInvalidID
	}
	return s.mutate(ctx, teamID, func(t *types.Team) error {
		if t.HasMember(userID) {
			return fmt.Errorf("%s in %s: %w", userID, teamID, types.ErrAlreadyMember)
		}
		t.MemberIDs = append(t.MemberIDs, userID)
		return nil
	})
}

// RemoveMember drops userID from the team. The leader cannot be removed;
// hand leadership over with SetLeader first.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	return s.mutate(ctx, teamID, func(t *types.Team) error {
		if t.LeaderID == userID {
			return fmt.Errorf("%s in %s: %w", userID, teamID, types.ErrLeaderRemoval)
		}
		i := slices.Index(t.MemberIDs, userID)
		if i < 0 {
			return fmt.Errorf("%s in %s: %w", userID, teamID, types.ErrNotMember)
		}
		t.MemberIDs = slices.Delete(t.MemberIDs, i, i+1)
		return nil
	})
}

// SetLeader makes an existing member the leader.
func (s *TeamService) SetLeader(ctx context.Context, teamID, userID string) (types.Team, error) {
	if err := s.guard(); err != nil {
		return types.Team{}, err
	}
	return s.mutate(ctx, teamID, func(t *types.Team) error {
		if !t.HasMember(userID) {
			return fmt.Errorf("%s in %s: %w", userID, teamID, types.ErrNotMember)
		}
		t.LeaderID = userID
		return nil
	})
}
