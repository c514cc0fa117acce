// AngelaMos | 2026
// store.go

// Package session holds the authenticated identity for one client process.
// A Store is created once, initialised explicitly with Init and passed to
// whatever needs the current user.
//
// The stored token is untrusted client storage. The role it carries gates
// UI controls and short-circuits requests that would be refused anyway; the
// server re-checks every write.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

// Gateway is the subset of the remote gateway the store calls.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.AuthResult, error)
	Logout(ctx context.Context) error
}

type Decoder interface {
	Decode(token string) (Identity, error)
}

type Config struct {
	Gateway     Gateway
	Credentials CredentialStore
	Decoder     Decoder
	Logger      *slog.Logger
}

type Store struct {
	gw      Gateway
	creds   CredentialStore
	decoder Decoder
	logger  *slog.Logger

	mu       sync.RWMutex
	identity *Identity
	token    string
}

func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	creds := cfg.Credentials
	if creds == nil {
		creds = NewMemoryStore()
	}

	decoder := cfg.Decoder
	if decoder == nil {
		decoder = NewTokenDecoder(nil)
	}

	return &Store{
		gw:      cfg.Gateway,
		creds:   creds,
		decoder: decoder,
		logger:  logger,
	}
}

// Init restores a session from the credential store. A missing, corrupt or
// forged token leaves the store unauthenticated; an unusable token is also
// removed from storage. Only credential store I/O failures are returned.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.token = ""

	token, err := s.creds.Load(ctx)
	if errors.Is(err, ErrNoCredential) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}

	ident, err := s.decoder.Decode(token)
	if err != nil {
		s.logger.Warn("discarding stored session token", "error", err)
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.logger.Warn("failed to clear stored session token", "error", clearErr)
		}
		return nil
	}

	s.identity = &ident
	s.token = token

	s.logger.Debug("session restored",
		"user_id", ident.ID,
		"role", ident.Role,
		"verified", ident.Verified,
	)
	return nil
}

// Close drops the in-memory session. The persisted token is kept so the
// next Init restores it.
func (s *Store) Close() {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()
}

func (s *Store) Login(ctx context.Context, email, password string) (Identity, error) {
	res, err := s.gw.Login(WithoutCredential(ctx), email, password)
	if err != nil {
		if gateway.IsCategory(err, gateway.CategoryAuth) {
			return Identity{}, fmt.Errorf("login: %w: %w", ErrInvalidCredentials, err)
		}
		return Identity{}, fmt.Errorf("login: %w", err)
	}

	return s.establish(ctx, res.Token)
}

func (s *Store) Signup(
	ctx context.Context,
	name, email, password string,
	role domain.Role,
) (Identity, error) {
	if !role.Signupable() {
		return Identity{}, fmt.Errorf("signup as %q: %w", role, ErrInvalidRole)
	}

	res, err := s.gw.Register(WithoutCredential(ctx), name, email, password, role)
	if err != nil {
		if re, ok := gateway.AsRemote(err); ok && re.Status == http.StatusConflict {
			return Identity{}, fmt.Errorf("signup: %w: %w", ErrDuplicateAccount, err)
		}
		return Identity{}, fmt.Errorf("signup: %w", err)
	}

	return s.establish(ctx, res.Token)
}

// Logout clears the session. It is safe to call without a session. Server
// side revocation is best effort and never keeps the local session alive.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	clearErr := s.creds.Clear(ctx)

	if token != "" && s.gw != nil {
		if err := s.gw.Logout(gateway.WithCredential(ctx, token)); err != nil {
			s.logger.Warn("server logout failed", "error", err)
		}
	}

	if clearErr != nil {
		return fmt.Errorf("clear credential: %w", clearErr)
	}
	return nil
}

// Current returns the authenticated identity without touching the network.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Role returns the cached role, empty when unauthenticated.
func (s *Store) Role() domain.Role {
	ident, ok := s.Current()
	if !ok {
		return ""
	}
	return ident.Role
}

// Capture returns the cached role and bearer token under one lock, so a
// concurrent Logout cannot split them.
func (s *Store) Capture() (domain.Role, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return "", ""
	}
	return s.identity.Role, s.token
}

// Token implements gateway.CredentialSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) establish(ctx context.Context, token string) (Identity, error) {
	ident, err := s.decoder.Decode(token)
	if err != nil {
		return Identity{}, fmt.Errorf("decode issued token: %w", err)
	}

	if err := s.creds.Save(ctx, token); err != nil {
		return Identity{}, fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.identity = &ident
	s.token = token
	s.mu.Unlock()

	s.logger.Info("session established", "user_id", ident.ID, "role", ident.Role)
	return ident, nil
}

// WithoutCredential pins "no bearer token" on ctx, for login and signup.
func WithoutCredential(ctx context.Context) context.Context {
	return gateway.WithCredential(ctx, "")
}

var _ gateway.CredentialSource = (*Store)(nil)
