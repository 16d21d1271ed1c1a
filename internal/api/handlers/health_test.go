package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func readyzResponse(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body.Checks
}

func TestHealthzAlwaysOK(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyzReportsSidecarProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound) // any response means reachable
	}))
	defer srv.Close()

	h := NewHealthHandler(nil, nil,
		SidecarProbe("engine", srv.URL),
		Probe{Name: "diarizer", Check: func(ctx context.Context) error {
			return errors.New("connection refused")
		}},
	)

	code, checks := readyzResponse(t, h)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if checks["engine"] != "ok" {
		t.Errorf("engine check = %q, want ok", checks["engine"])
	}
	if !strings.HasPrefix(checks["diarizer"], "unhealthy:") {
		t.Errorf("diarizer check = %q, want unhealthy", checks["diarizer"])
	}
}

func TestReadyzOKWhenAllProbesPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := NewHealthHandler(nil, nil,
		SidecarProbe("engine", srv.URL),
		SidecarProbe("diarizer", srv.URL),
	)

	code, checks := readyzResponse(t, h)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	for name, v := range checks {
		if v != "ok" {
			t.Errorf("%s check = %q, want ok", name, v)
		}
	}
}

func TestSidecarProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // freed port, nothing listening

	p := SidecarProbe("engine", srv.URL)
	if err := p.Check(context.Background()); err == nil {
		t.Fatal("expected error for unreachable sidecar")
	}
}
