package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// Pinger is an optional dependency checked by the readiness probe, such as redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      *sqlx.DB
	pingers map[string]Pinger
}

func NewHealthHandler(db *sqlx.DB, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{db: db, pingers: pingers}
}

// pingHandler reports liveness only.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler reports readiness of the database and every registered pinger.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: map[string]CheckEntry{},
	}

	resp.Components["database"] = check(func() (map[string]any, error) {
		if h.db == nil {
			return nil, nil
		}
		var one int
		if err := h.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
			return nil, err
		}
		stats := h.db.Stats()
		return map[string]any{
			"driver":           h.db.DriverName(),
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
		}, nil
	})
	for name, p := range h.pingers {
		resp.Components[name] = check(func() (map[string]any, error) {
			return nil, p.Ping(ctx)
		})
	}

	for _, c := range resp.Components {
		if c.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func check(fn func() (map[string]any, error)) CheckEntry {
	start := time.Now()
	details, err := fn()
	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    details,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
