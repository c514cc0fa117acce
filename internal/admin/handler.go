// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

type DoubtCounter interface {
	CountByStatus(ctx context.Context) (map[domain.DoubtStatus]int, error)
}

type UserCounter interface {
	CountByRole(ctx context.Context) (map[domain.Role]int, error)
}

// HandlerConfig wires the stats sources. Any nil source is left out of
// the report.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	DBPing     func(ctx context.Context) error
	RedisStats func() core.RedisStats
	RedisPing  func(ctx context.Context) error
	Doubts     DoubtCounter
	Users      UserCounter
}

type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.With(
		authenticator,
		middleware.RequirePermission(access.ActionView, access.ResourceStats),
	).Get("/admin/stats", h.GetStats)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := StatsResponse{
		Database: DatabaseStatus{Healthy: ping(ctx, h.cfg.DBPing), Stats: h.dbStats()},
		Redis:    RedisStatus{Healthy: ping(ctx, h.cfg.RedisPing)},
		Runtime:  runtimeStats(),
	}
	if h.cfg.RedisStats != nil {
		s := h.cfg.RedisStats()
		resp.Redis.Stats = &s
	}

	if h.cfg.Doubts != nil {
		counts, err := h.cfg.Doubts.CountByStatus(ctx)
		if err != nil {
			core.JSONError(w, err)
			return
		}
		resp.Doubts = counts
	}

	if h.cfg.Users != nil {
		counts, err := h.cfg.Users.CountByRole(ctx)
		if err != nil {
			core.JSONError(w, err)
			return
		}
		resp.Users = counts
	}

	core.OK(w, resp)
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	return fn == nil || fn(ctx) == nil
}

func (h *Handler) dbStats() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}

	stats := h.cfg.DBStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func runtimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		NumGC:        mem.NumGC,
	}
}

type StatsResponse struct {
	Database DatabaseStatus             `json:"database"`
	Redis    RedisStatus                `json:"redis"`
	Runtime  RuntimeStats               `json:"runtime"`
	Doubts   map[domain.DoubtStatus]int `json:"doubts,omitempty"`
	Users    map[domain.Role]int        `json:"users,omitempty"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool             `json:"healthy"`
	Stats   *core.RedisStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
