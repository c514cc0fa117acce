// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/doubtspace/internal/config"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
	"github.com/carterperez-dev/doubtspace/internal/session"
	"github.com/carterperez-dev/doubtspace/internal/submission"
	"github.com/carterperez-dev/doubtspace/internal/upvote"
)

const jwksPath = "/.well-known/jwks.json"

type app struct {
	out      io.Writer
	logger   *slog.Logger
	client   *gateway.Client
	store    *session.Store
	engine   *lifecycle.Engine
	pipeline *submission.Pipeline
	toggler  *upvote.Toggler
	closers  []func() error
}

// newApp wires the client core. creds overrides the configured credential
// store when non-nil.
func newApp(
	ctx context.Context,
	cfg config.ClientConfig,
	creds session.CredentialStore,
	out io.Writer,
	logger *slog.Logger,
) (*app, error) {
	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{out: out, logger: logger, client: client}

	if creds == nil {
		creds, err = a.credentialStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	a.store = session.NewStore(session.Config{
		Gateway:     client,
		Credentials: creds,
		Decoder:     a.tokenDecoder(ctx, cfg),
		Logger:      logger,
	})
	client.SetCredentials(a.store)

	if err := a.store.Init(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.engine = lifecycle.NewEngine(client, logger)
	a.pipeline = submission.NewPipeline(client, a.engine, a.store, logger)
	a.toggler = upvote.NewToggler(client, a.store, logger)

	return a, nil
}

func (a *app) credentialStore(ctx context.Context, cfg config.ClientConfig) (session.CredentialStore, error) {
	switch cfg.CredentialStore {
	case config.CredentialStoreMemory:
		return session.NewMemoryStore(), nil
	case config.CredentialStoreRedis:
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix, 0)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	default:
		return session.NewFileStore(cfg.CredentialPath), nil
	}
}

// tokenDecoder verifies against the server's JWKS when asked to. If the key
// set cannot be fetched the decoder falls back to unverified parsing and
// the role stays advisory.
func (a *app) tokenDecoder(ctx context.Context, cfg config.ClientConfig) *session.TokenDecoder {
	if !cfg.VerifyToken {
		return session.NewTokenDecoder(nil)
	}

	url := cfg.JWKSURL
	if url == "" {
		url = strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/api") + jwksPath
	}

	raw, err := a.client.FetchJWKS(ctx, url)
	if err != nil {
		a.logger.Warn("jwks unavailable, token signatures will not be checked", "error", err)
		return session.NewTokenDecoder(nil)
	}

	keys, err := session.ParseKeySet(raw)
	if err != nil {
		a.logger.Warn("jwks unusable, token signatures will not be checked", "error", err)
		return session.NewTokenDecoder(nil)
	}

	return session.NewTokenDecoder(keys)
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close", "error", err)
		}
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
