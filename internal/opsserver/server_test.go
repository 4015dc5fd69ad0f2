package opsserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"onetap-admin/internal/metrics"
)

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func init() { gin.SetMode(gin.TestMode) }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"backend up", nil, http.StatusOK, `"status":"ok"`},
		{"backend down", errors.New("connection refused"), http.StatusServiceUnavailable, `"backend":false`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Router(metrics.New(), stubHealth{err: tt.err})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.TableReloaded("attendance")

	r := Router(m, stubHealth{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `console_table_reloads_total{table="attendance"} 1`) {
		t.Errorf("reload counter missing from /metrics")
	}
}
