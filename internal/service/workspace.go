package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// WorkspacePatch lists the fields Update may change. Ownership and members
// change only through the membership operations.
type WorkspacePatch struct {
	Name        *string
	Description *string
}

// WorkspaceService manages workspaces and their members.
type WorkspaceService struct {
	store *mock.Store[types.Workspace]
	users *UserService
	deps  Deps
}

// NewWorkspaceService wraps store. users resolves invitations by email.
func NewWorkspaceService(store *mock.Store[types.Workspace], users *UserService, deps Deps) *WorkspaceService {
	return &WorkspaceService{store: store, users: users, deps: deps.withDefaults()}
}

// Store exposes the underlying collection.
func (s *WorkspaceService) Store() *mock.Store[types.Workspace] { return s.store }

func (s *WorkspaceService) guard() error {
	return guard(s.deps.Config, types.ServiceWorkspaces, s.store.SimulateError)
}

// Create stores a new workspace. The owner is listed first among the members
// with the admin role, whatever members in carries.
func (s *WorkspaceService) Create(ctx context.Context, in types.Workspace) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	if in.Name == "" {
		return types.Workspace{}, invalid("workspace name is required")
	}
	if in.OwnerID == "" {
		return types.Workspace{}, invalid("workspace owner is required")
	}
	now := s.deps.now()
	members := []types.WorkspaceMember{{UserID: in.OwnerID, Role: types.RoleAdmin, JoinedAt: now}}
	for _, m := range in.Members {
		if m.UserID == in.OwnerID || slices.ContainsFunc(members, func(x types.WorkspaceMember) bool { return x.UserID == m.UserID }) {
			continue
		}
		if m.Role == "" {
			m.Role = types.RoleMember
		}
		if !types.ValidRole(m.Role) {
			return types.Workspace{}, invalid("unknown role %q", m.Role)
		}
		if m.JoinedAt.IsZero() {
			m.JoinedAt = now
		}
		members = append(members, m)
	}
	in.Members = members
	in.CreatedAt = now
	in.UpdatedAt = now
	return s.store.Create(ctx, in)
}

// Get returns one workspace.
func (s *WorkspaceService) Get(ctx context.Context, id string) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	return s.store.Get(ctx, id)
}

// Update renames or redescribes a workspace.
func (s *WorkspaceService) Update(ctx context.Context, id string, patch WorkspacePatch) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return types.Workspace{}, invalid("workspace name is required")
	}
	return s.mutate(ctx, id, func(w *types.Workspace) error {
		if patch.Name != nil {
			w.Name = *patch.Name
		}
		if patch.Description != nil {
			w.Description = *patch.Description
		}
		return nil
	})
}

func (s *WorkspaceService) mutate(ctx context.Context, id string, fn func(*types.Workspace) error) (types.Workspace, error) {
	now := s.deps.now()
	return s.store.Update(ctx, id, func(w *types.Workspace) error {
		if err := fn(w); err != nil {
			return err
		}
		w.UpdatedAt = now
		return nil
	})
}

// Delete removes a workspace. Its tasks are not touched.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns every workspace.
func (s *WorkspaceService) List(ctx context.Context) ([]types.Workspace, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// ListForUser returns the workspaces userID owns or belongs to.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]types.Workspace, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.Filter(ctx, func(w types.Workspace) bool {
		return w.OwnerID == userID || w.HasMember(userID)
	})
}

// InviteMember adds the user registered under email with role. The lookup
// goes through the user service and can fail on its own.
func (s *WorkspaceService) InviteMember(ctx context.Context, workspaceID, email, role string) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	if role == "" {
		role = types.RoleMember
	}
	if !types.ValidRole(role) {
		return types.Workspace{}, invalid("unknown role %q", role)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return types.Workspace{}, err
	}
	joined := s.deps.now()
	return s.mutate(ctx, workspaceID, func(w *types.Workspace) error {
		if w.HasMember(user.ID) {
			return fmt.Errorf("%s in %s: %w", user.ID, workspaceID, types.ErrAlreadyMember)
		}
		w.Members = append(w.Members, types.WorkspaceMember{UserID: user.ID, Role: role, JoinedAt: joined})
		return nil
	})
}

// RemoveMember drops userID from the workspace. The owner cannot be removed.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID string) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	return s.mutate(ctx, workspaceID, func(w *types.Workspace) error {
		if w.OwnerID == userID {
			return fmt.Errorf("%s in %s: %w", userID, workspaceID, types.ErrOwnerRemoval)
		}
		i := slices.IndexFunc(w.Members, func(m types.WorkspaceMember) bool { return m.UserID == userID })
		if i < 0 {
			return fmt.Errorf("%s in %s: %w", userID, workspaceID, types.ErrNotMember)
		}
		w.Members = slices.Delete(w.Members, i, i+1)
		return nil
	})
}

// UpdateMemberRole changes the role of an existing member.
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID, role string) (types.Workspace, error) {
	if err := s.guard(); err != nil {
		return types.Workspace{}, err
	}
	if !types.ValidRole(role) {
		return types.Workspace{}, invalid("unknown role %q", role)
	}
	return s.mutate(ctx, workspaceID, func(w *types.Workspace) error {
		for i := range w.Members {
			if w.Members[i].UserID == userID {
				w.Members[i].Role = role
				return nil
			}
		}
		return fmt.Errorf("%s in %s: %w", userID, workspaceID, types.ErrNotMember)
	})
}
