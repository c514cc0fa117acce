// AngelaMos | 2026
// auth_test.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/config"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessTokenExpire: 15 * time.Minute,
		Issuer:            "doubtspace-test",
		Audience:          "doubtspace-test-api",
	}
}

func newTestManager(t *testing.T, cfg config.JWTConfig) *JWTManager {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	m, err := NewJWTManagerFromKey(key, cfg)
	require.NoError(t, err)
	return m
}

func newTestBlacklist(t *testing.T) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewBlacklist(rdb), mr
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, testJWTConfig())

	issued, err := m.CreateAccessToken(AccessTokenClaims{
		UserID: "u-1",
		Email:  "mia@example.com",
		Name:   "Mia",
		Role:   domain.RoleMentor,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "mia@example.com", claims.Email)
	assert.Equal(t, "Mia", claims.Name)
	assert.Equal(t, domain.RoleMentor, claims.Role)
	assert.Equal(t, issued.JTI, claims.JTI)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpire = -time.Minute
	m := newTestManager(t, cfg)

	issued, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: domain.RoleJunior})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsForeignKeyAndAudience(t *testing.T) {
	m := newTestManager(t, testJWTConfig())
	other := newTestManager(t, testJWTConfig())

	issued, err := other.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: domain.RoleJunior})
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	cfg := testJWTConfig()
	cfg.Audience = "someone-else"
	elsewhere := newTestManager(t, cfg)
	issued, err = elsewhere.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: domain.RoleJunior})
	require.NoError(t, err)
	_, err = elsewhere.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyAccessToken(context.Background(), "not.a.token")
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	m := newTestManager(t, testJWTConfig())

	issued, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: "superuser"})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	m := newTestManager(t, testJWTConfig())
	bl, _ := newTestBlacklist(t)
	m.SetRevocationChecker(bl)

	issued, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: domain.RoleJunior})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)

	require.NoError(t, bl.Revoke(context.Background(), issued.JTI, issued.ExpiresAt))

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestRevocationOutageFailsOpen(t *testing.T) {
	m := newTestManager(t, testJWTConfig())
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	m.SetRevocationChecker(NewBlacklist(rdb))
	mr.Close()

	issued, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: domain.RoleJunior})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
}

func TestBlacklistEntryExpires(t *testing.T) {
	bl, mr := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestJWKSHandlerPublishesKey(t *testing.T) {
	m := newTestManager(t, testJWTConfig())

	rec := httptest.NewRecorder()
	m.GetJWKSHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	set, err := jwk.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	key, ok := set.LookupKeyID(m.GetKeyID())
	require.True(t, ok)

	var d []byte
	assert.Error(t, key.Get("d", &d), "private component must not be published")
}

func TestGenerateKeyPairLoads(t *testing.T) {
	dir := t.TempDir()
	cfg := testJWTConfig()
	cfg.PrivateKeyPath = filepath.Join(dir, "keys", "private.pem")
	cfg.PublicKeyPath = filepath.Join(dir, "keys", "public.pem")

	require.NoError(t, GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))

	first, err := NewJWTManager(cfg)
	require.NoError(t, err)
	second, err := NewJWTManager(cfg)
	require.NoError(t, err)
	assert.Equal(t, first.GetKeyID(), second.GetKeyID())
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*UserInfo)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(
	_ context.Context,
	email, hash, name string,
	role domain.Role,
) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	if _, ok := f.users[email]; ok {
		return nil, core.ErrDuplicateKey
	}
	u := &UserInfo{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: hash, Role: role}
	f.users[email] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return core.ErrNotFound
}

type authFixture struct {
	jwt     *JWTManager
	users   *fakeUsers
	service *Service
	router  http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	m := newTestManager(t, testJWTConfig())
	bl, _ := newTestBlacklist(t)
	m.SetRevocationChecker(bl)

	users := newFakeUsers()
	svc := NewService(m, users, bl, nil)

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(m), nil)

	return &authFixture{jwt: m, users: users, service: svc, router: r}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.service.Register(ctx, RegisterRequest{
		Name:     "Jun",
		Email:    "jun@example.com",
		Password: "password123",
		Role:     "junior",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleJunior, res.User.Role)

	claims, err := f.jwt.VerifyAccessToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := f.service.Login(ctx, LoginRequest{Email: "jun@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.service.Login(ctx, LoginRequest{Email: "jun@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsAdminAndDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, RegisterRequest{
		Name: "Root", Email: "root@example.com", Password: "password123", Role: "admin",
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	req := RegisterRequest{Name: "Mia", Email: "mia@example.com", Password: "password123", Role: "mentor"}
	_, err = f.service.Register(ctx, req)
	require.NoError(t, err)
	_, err = f.service.Register(ctx, req)
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.service.Register(ctx, RegisterRequest{
		Name: "Jun", Email: "jun@example.com", Password: "password123", Role: "junior",
	})
	require.NoError(t, err)

	claims, err := f.jwt.VerifyAccessToken(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, f.service.Logout(ctx, claims))

	_, err = f.jwt.VerifyAccessToken(ctx, res.Token)
	require.ErrorIs(t, err, core.ErrTokenRevoked)

	require.ErrorIs(t, f.service.Logout(ctx, nil), core.ErrUnauthorized)
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (int, core.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp core.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestHandlerFlow(t *testing.T) {
	f := newAuthFixture(t)

	status, resp := do(t, f.router, http.MethodPost, "/users/register", "",
		`{"name":"Jun","email":"jun@example.com","password":"password123","role":"junior"}`)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, resp.Success)

	status, resp = do(t, f.router, http.MethodPost, "/users/register", "",
		`{"name":"Jun","email":"jun@example.com","password":"password123","role":"junior"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", resp.Code)

	status, resp = do(t, f.router, http.MethodPost, "/users/register", "",
		`{"name":"Jun","email":"not-an-email","password":"short","role":"junior"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)

	status, resp = do(t, f.router, http.MethodPost, "/users/login", "",
		`{"email":"jun@example.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Code)

	status, resp = do(t, f.router, http.MethodPost, "/users/login", "",
		`{"email":"jun@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result domain.AuthResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.NotEmpty(t, result.Token)

	status, _ = do(t, f.router, http.MethodPost, "/users/logout", result.Token, "")
	assert.Equal(t, http.StatusOK, status)

	status, resp = do(t, f.router, http.MethodPost, "/users/logout", result.Token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", resp.Code)
}
