package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/taskflow/internal/kv"
	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

const (
	// DemoPassword is the only password Login accepts.
	DemoPassword = "password123"
	// SessionTTL is how long a token stays valid.
	SessionTTL = 24 * time.Hour

	tokenSignature = "mock-signature"
)

// Registration is the input of Register.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenClaims is the payload carried in a session token.
type TokenClaims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AuthService keeps the single login session. The session is written under
// types.KeyAuthSession while persistence is on and held in memory otherwise.
type AuthService struct {
	users   *UserService
	storage kv.Storage
	deps    Deps

	mu      sync.Mutex
	session *types.AuthSession
}

// NewAuthService restores a stored session if one exists.
func NewAuthService(users *UserService, storage kv.Storage, deps Deps) *AuthService {
	s := &AuthService{users: users, storage: storage, deps: deps.withDefaults()}
	if s.deps.Config.Persisting() {
		s.session = s.readStored()
	}
	return s
}

func (s *AuthService) readStored() *types.AuthSession {
	raw, ok, err := s.storage.Get(types.KeyAuthSession)
	if err != nil {
		s.deps.Logger.Warn("reading auth session failed", "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	var sess types.AuthSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.deps.Logger.Warn("stored auth session is corrupt", "err", err)
		return nil
	}
	return &sess
}

func (s *AuthService) guard(ctx context.Context) error {
	cfg := s.deps.Config
	err := guard(cfg, types.ServiceAuth, func(opts ...mock.FaultOption) error {
		return mock.SimulateError(cfg, opts...)
	})
	if err != nil {
		return err
	}
	return mock.Delay(ctx, cfg)
}

// setLocked installs sess (nil clears it) and writes it through when
// persisting. The caller must hold s.mu.
func (s *AuthService) setLocked(sess *types.AuthSession) {
	s.session = sess
	if !s.deps.Config.Persisting() {
		return
	}
	if sess == nil {
		if err := s.storage.Remove(types.KeyAuthSession); err != nil {
			s.deps.Logger.Warn("removing auth session failed", "err", err)
		}
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		s.deps.Logger.Warn("encoding auth session failed", "err", err)
		return
	}
	if err := s.storage.Set(types.KeyAuthSession, string(data)); err != nil {
		s.deps.Logger.Warn("writing auth session failed", "err", err)
	}
}

func (s *AuthService) issue(u types.User) (types.AuthSession, error) {
	now := s.deps.now()
	token, err := EncodeToken(TokenClaims{
		Subject:   u.ID,
		Email:     u.Email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(SessionTTL).Unix(),
	})
	if err != nil {
		return types.AuthSession{}, err
	}
	sess := types.AuthSession{
		User:         u,
		Token:        token,
		ExpiresAt:    now.Add(SessionTTL),
		RefreshToken: uuid.NewString(),
	}
	s.mu.Lock()
	s.setLocked(&sess)
	s.mu.Unlock()
	return sess, nil
}

// Login starts a session for the user registered under email. Unknown emails
// and wrong passwords both fail with types.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.AuthSession, error) {
	if err := s.guard(ctx); err != nil {
		return types.AuthSession{}, err
	}
	u, err := s.users.findByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) || (err == nil && password != DemoPassword) {
		return types.AuthSession{}, types.ErrInvalidCredentials
	}
	if err != nil {
		return types.AuthSession{}, err
	}
	return s.issue(u)
}

// Register creates a member account and logs it in.
func (s *AuthService) Register(ctx context.Context, r Registration) (types.AuthSession, error) {
	if err := s.guard(ctx); err != nil {
		return types.AuthSession{}, err
	}
	if len(r.Password) < 6 {
		return types.AuthSession{}, invalid("password must be at least 6 characters")
	}
	u, err := s.users.Create(ctx, types.User{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      types.RoleMember,
	})
	if err != nil {
		return types.AuthSession{}, err
	}
	return s.issue(u)
}

// Logout ends the session. Logging out without a session is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.setLocked(nil)
	s.mu.Unlock()
	return nil
}

// CurrentSession returns the active session. An expired session is cleared
// and reported as types.ErrSessionExpired.
func (s *AuthService) CurrentSession(ctx context.Context) (types.AuthSession, error) {
	if err := s.guard(ctx); err != nil {
		return types.AuthSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return types.AuthSession{}, types.ErrNoSession
	}
	if !s.session.Valid(s.deps.Now()) {
		s.setLocked(nil)
		return types.AuthSession{}, types.ErrSessionExpired
	}
	return *s.session, nil
}

// IsAuthenticated reports whether an unexpired session exists. It neither
// waits nor fails.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.Valid(s.deps.Now())
}

// Refresh exchanges the refresh token for a new session of the same user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (types.AuthSession, error) {
	if err := s.guard(ctx); err != nil {
		return types.AuthSession{}, err
	}
	s.mu.Lock()
	cur := s.session
	s.mu.Unlock()
	if cur == nil {
		return types.AuthSession{}, types.ErrNoSession
	}
	if refreshToken == "" || refreshToken != cur.RefreshToken {
		return types.AuthSession{}, types.ErrInvalidCredentials
	}
	return s.issue(cur.User)
}

var tokenHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

// EncodeToken renders claims in the three-part token layout
// header.payload.signature. The signature is a fixed marker; tokens carry no
// security.
func EncodeToken(c TokenClaims) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding token claims: %w", err)
	}
	return tokenHeader + "." + base64.RawURLEncoding.EncodeToString(payload) + "." + tokenSignature, nil
}

// DecodeToken reads the claims back out of a token made by EncodeToken.
func DecodeToken(token string) (TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] != tokenSignature {
		return TokenClaims{}, invalid("malformed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return TokenClaims{}, invalid("token payload: %v", err)
	}
	var c TokenClaims
	if err := json.Unmarshal(payload, &c); err != nil {
		return TokenClaims{}, invalid("token payload: %v", err)
	}
	return c, nil
}
