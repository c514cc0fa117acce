// AngelaMos | 2026
// server.go

// Package gatewaytest runs the API's own handlers and services over
// in-memory repositories, for tests of the client core. Tokens are real
// ES256 tokens and logout goes through the Redis blacklist (miniredis). On
// top of the API it counts every request by method and path, and can
// inject failures or hold a request open.
package gatewaytest

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/doubtspace/internal/answer"
	"github.com/carterperez-dev/doubtspace/internal/auth"
	"github.com/carterperez-dev/doubtspace/internal/comment"
	"github.com/carterperez-dev/doubtspace/internal/config"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/doubt"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
	"github.com/carterperez-dev/doubtspace/internal/space"
	"github.com/carterperez-dev/doubtspace/internal/user"
	"github.com/carterperez-dev/doubtspace/internal/vote"
)

const JWKSPath = "/.well-known/jwks.json"

type failure struct {
	status  int
	message string
}

type Server struct {
	srv *httptest.Server

	key    *ecdsa.PrivateKey
	jwtCfg config.JWTConfig
	jwt    *auth.JWTManager

	data   *store
	users  *user.Service
	doubts *doubt.Service

	mu       sync.Mutex
	requests map[string]int
	failures map[string]failure
	holds    map[string]chan struct{}
	arrivals map[string]chan struct{}
}

// New starts a backend that is shut down when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	jwtCfg := config.JWTConfig{
		AccessTokenExpire: time.Hour,
		Issuer:            "doubtspace",
		Audience:          "doubtspace-api",
	}
	jwtManager, err := auth.NewJWTManagerFromKey(key, jwtCfg)
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	blacklist := auth.NewBlacklist(rdb)
	jwtManager.SetRevocationChecker(blacklist)

	logger := slog.New(slog.DiscardHandler)
	data := newStore()

	s := &Server{
		key:      key,
		jwtCfg:   jwtCfg,
		jwt:      jwtManager,
		data:     data,
		users:    user.NewService(userRepo{data}),
		doubts:   doubt.NewService(doubtRepo{data}, nil, logger),
		requests: make(map[string]int),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		arrivals: make(map[string]chan struct{}),
	}

	authSvc := auth.NewService(jwtManager, s.users, blacklist, logger)
	answerSvc := answer.NewService(answerRepo{data}, nil, logger)
	commentSvc := comment.NewService(commentRepo{data})
	voteSvc := vote.NewService(voteRepo{data})
	spaceSvc := space.NewService(spaceRepo{data})

	router := chi.NewRouter()
	router.Use(s.intercept)
	router.Get(JWKSPath, jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)

	router.Route("/api", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator, nil)
		user.NewHandler(s.users).RegisterRoutes(r, authenticator)
		doubt.NewHandler(s.doubts).RegisterRoutes(r, authenticator)
		answer.NewHandler(answerSvc).RegisterRoutes(r, authenticator, optionalAuth)
		comment.NewHandler(commentSvc).RegisterRoutes(r, authenticator)
		vote.NewHandler(voteSvc).RegisterRoutes(r, authenticator)
		space.NewHandler(spaceSvc).RegisterRoutes(r, authenticator)
	})

	s.srv = httptest.NewServer(router)
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL is the API root a gateway.Client should be pointed at.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api"
}

func (s *Server) JWKSURL() string {
	return s.srv.URL + JWKSPath
}

func (s *Server) KeySet() jwk.Set {
	return s.jwt.PublicKeySet()
}

// Requests returns how many times "METHOD /path" was called. Paths are
// relative to the API root.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// TotalRequests counts every request the backend received.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// FailNext makes the next call to route reply with status and message.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = failure{status: status, message: message}
	s.mu.Unlock()
}

// Hold parks calls to route until release is called. The returned channel
// receives once per held arrival.
func (s *Server) Hold(route string) (arrived <-chan struct{}, release func()) {
	gate := make(chan struct{})
	seen := make(chan struct{}, 16)

	s.mu.Lock()
	s.holds[route] = gate
	s.arrivals[route] = seen
	s.mu.Unlock()

	var once sync.Once
	return seen, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			delete(s.arrivals, route)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// AddUser stores an account of any role, admins included, and returns it
// with a fresh token.
func (s *Server) AddUser(name, email, password string, role domain.Role) (domain.User, string) {
	hash, err := core.HashPassword(password)
	if err != nil {
		panic(err)
	}

	info, err := s.users.Create(context.Background(), email, hash, name, role)
	if err != nil {
		panic(err)
	}

	u := domain.User{ID: info.ID, Name: info.Name, Email: info.Email, Role: info.Role}
	return u, s.SignToken(u, s.jwtCfg.AccessTokenExpire)
}

// SignToken issues a token for an arbitrary identity, including ones the
// backend has never stored. A negative ttl yields an expired token.
func (s *Server) SignToken(u domain.User, ttl time.Duration) string {
	cfg := s.jwtCfg
	cfg.AccessTokenExpire = ttl

	signer, err := auth.NewJWTManagerFromKey(s.key, cfg)
	if err != nil {
		panic(err)
	}
	tok, err := signer.CreateAccessToken(auth.AccessTokenClaims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	})
	if err != nil {
		panic(err)
	}
	return tok.Token
}

// SeedDoubt asks a doubt on behalf of authorID.
func (s *Server) SeedDoubt(authorID, title, description string, tags ...string) domain.Doubt {
	req := doubt.CreateDoubtRequest{Title: title, Description: description, Tags: tags}
	req.Normalize()

	d, err := s.doubts.Create(context.Background(), authorID, req)
	if err != nil {
		panic(err)
	}
	return doubt.ToResponse(d)
}

// SetDoubtStatus overwrites a stored status, for replaying stale or
// out-of-band server state.
func (s *Server) SetDoubtStatus(id string, status domain.DoubtStatus) {
	s.data.mu.Lock()
	if d, ok := s.data.doubts[id]; ok {
		d.Status = status
	}
	s.data.mu.Unlock()
}

// SeedAnswer stores an answer without advancing the doubt's status and
// without the author's role being checked.
func (s *Server) SeedAnswer(doubtID, mentorID, content string) domain.Answer {
	a := &answer.Answer{
		ID:       newID(),
		DoubtID:  doubtID,
		MentorID: mentorID,
		Content:  content,
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	answerRepo{s.data}.insertAnswerLocked(a)
	view := s.data.answerViewLocked(a, "")
	return answer.ToResponse(&view)
}

// UpvoteCount returns the stored count for an answer.
func (s *Server) UpvoteCount(answerID string) int {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	return s.data.votesForLocked(answerID)
}

func routeKey(r *http.Request) string {
	return r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)

		s.mu.Lock()
		s.requests[key]++
		fail, failing := s.failures[key]
		delete(s.failures, key)
		gate := s.holds[key]
		seen := s.arrivals[key]
		s.mu.Unlock()

		if gate != nil {
			select {
			case seen <- struct{}{}:
			default:
			}
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			core.Error(w, fail.status, "INJECTED", fail.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}
