// Package dashboard aggregates the overview counters shown on the admin landing page.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/transport"
	"github.com/frahmantamala/chathub/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Counter reports how many records a module holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type CounterFunc func(ctx context.Context) (int64, error)

func (f CounterFunc) Count(ctx context.Context) (int64, error) { return f(ctx) }

type Counters struct {
	Models    Counter
	Templates Counter
	Flows     Counter
	Sources   Counter
	Users     Counter
	Tenants   Counter
}

type Overview struct {
	Models      int64     `json:"models"`
	Templates   int64     `json:"templates"`
	Flows       int64     `json:"flows"`
	Sources     int64     `json:"sources"`
	Users       int64     `json:"users"`
	Tenants     int64     `json:"tenants"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Service struct {
	counters Counters
	timeout  time.Duration
	logger   *slog.Logger
}

func NewService(counters Counters, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{counters: counters, timeout: 5 * time.Second, logger: logger}
}

// Overview runs every count concurrently and fails as soon as one does.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		name    string
		counter Counter
		dst     *int64
	}{
		{"models", s.counters.Models, &out.Models},
		{"templates", s.counters.Templates, &out.Templates},
		{"flows", s.counters.Flows, &out.Flows},
		{"sources", s.counters.Sources, &out.Sources},
		{"users", s.counters.Users, &out.Users},
		{"tenants", s.counters.Tenants, &out.Tenants},
	} {
		if job.counter == nil {
			continue
		}
		g.Go(func() error {
			n, err := job.counter.Count(gctx)
			if err != nil {
				s.logger.Error("failed to count", "collection", job.name, "error", err)
				return err
			}
			*job.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, internal.NewInternalError("failed to build dashboard overview", err)
	}
	out.GeneratedAt = time.Now().UTC()
	return out, nil
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.Overview(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, overview, "")
}
