package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Probe reports reachability of one external collaborator the pipeline
// depends on, such as an inference sidecar.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// SidecarProbe checks that the HTTP sidecar at baseURL accepts connections.
// Any HTTP response counts as reachable; the sidecars do not share a health
// endpoint contract.
func SidecarProbe(name, baseURL string) Probe {
	client := &http.Client{Timeout: 5 * time.Second}
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
	}
}

type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	probes []Probe
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, probes ...Probe) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, probes: probes}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports per-dependency health: queue backend, history database when
// configured, and the inference sidecars the jobs will call.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.db != nil {
		record(checks, "database", h.db.Ping(r.Context()))
	}
	if h.redis != nil {
		record(checks, "redis", h.redis.Ping(r.Context()).Err())
	}
	for _, p := range h.probes {
		record(checks, p.Name, p.Check(r.Context()))
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]any{"status": statusStr(status), "checks": checks})
}

func record(checks map[string]string, name string, err error) {
	if err != nil {
		checks[name] = "unhealthy: " + err.Error()
		return
	}
	checks[name] = "ok"
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
