package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// UserPatch lists the fields Update may change.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *string
}

// UserService manages the user collection.
type UserService struct {
	store *mock.Store[types.User]
	deps  Deps
}

// NewUserService wraps store.
func NewUserService(store *mock.Store[types.User], deps Deps) *UserService {
	return &UserService{store: store, deps: deps.withDefaults()}
}

// Store exposes the underlying collection.
func (s *UserService) Store() *mock.Store[types.User] { return s.store }

func (s *UserService) guard() error {
	return guard(s.deps.Config, types.ServiceUsers, s.store.SimulateError)
}

func sameEmail(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

func validateUser(u types.User) error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return invalid("email %q: %v", u.Email, err)
	}
	if u.FirstName == "" {
		return invalid("first name is required")
	}
	if !types.ValidRole(u.Role) {
		return invalid("unknown role %q", u.Role)
	}
	return nil
}

// Create stores a new user. Role defaults to member; the email must not be
// registered already.
func (s *UserService) Create(ctx context.Context, in types.User) (types.User, error) {
	if err := s.guard(); err != nil {
		return types.User{}, err
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = types.RoleMember
	}
	if err := validateUser(in); err != nil {
		return types.User{}, err
	}
	if _, err := s.findByEmail(ctx, in.Email); err == nil {
		return types.User{}, fmt.Errorf("%s: %w", in.Email, types.ErrEmailTaken)
	} else if !errors.Is(err, types.ErrNotFound) {
		return types.User{}, err
	}
	now := s.deps.now()
	in.CreatedAt = now
	in.UpdatedAt = now
	return s.store.Create(ctx, in)
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (types.User, error) {
	if err := s.guard(); err != nil {
		return types.User{}, err
	}
	return s.store.Get(ctx, id)
}

// Update applies patch. Changing the email to one held by another user fails
// with types.ErrEmailTaken.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (types.User, error) {
	if err := s.guard(); err != nil {
		return types.User{}, err
	}
	if patch.Email != nil {
		other, err := s.findByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != id:
			return types.User{}, fmt.Errorf("%s: %w", *patch.Email, types.ErrEmailTaken)
		case err != nil && !errors.Is(err, types.ErrNotFound):
			return types.User{}, err
		}
	}
	now := s.deps.now()
	return s.store.Update(ctx, id, func(u *types.User) error {
		if patch.Email != nil {
			u.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Avatar != nil {
			u.Avatar = *patch.Avatar
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if err := validateUser(*u); err != nil {
			return err
		}
		u.UpdatedAt = now
		return nil
	})
}

// Delete removes a user. Memberships referencing the user are left to the
// workspace and team services.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// FindByEmail returns the user registered under email, ignoring case.
func (s *UserService) FindByEmail(ctx context.Context, email string) (types.User, error) {
	if err := s.guard(); err != nil {
		return types.User{}, err
	}
	return s.findByEmail(ctx, email)
}

func (s *UserService) findByEmail(ctx context.Context, email string) (types.User, error) {
	found, err := s.store.Filter(ctx, func(u types.User) bool { return sameEmail(u.Email, email) })
	if err != nil {
		return types.User{}, err
	}
	if len(found) == 0 {
		return types.User{}, fmt.Errorf("user %s: %w", email, types.ErrNotFound)
	}
	return found[0], nil
}

func userText(u types.User) []string { return []string{u.FirstName, u.LastName, u.Email} }

// Search matches names and email, ignoring case.
func (s *UserService) Search(ctx context.Context, term string) ([]types.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.Search(ctx, term, userText)
}
