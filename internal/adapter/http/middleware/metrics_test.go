package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		wantLabel  string
	}{
		{
			name:       "labels by route pattern",
			method:     http.MethodGet,
			path:       "/api/v1/debts/01HZX/schedule",
			statusCode: http.StatusTeapot,
			wantLabel:  "/api/v1/debts/{id}/schedule",
		},
		{
			name:       "static route",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
			wantLabel:  "/health",
		},
		{
			name:       "unrouted request",
			method:     http.MethodGet,
			path:       "/nowhere",
			statusCode: http.StatusNotFound,
			wantLabel:  "unmatched",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			r := chi.NewRouter()
			r.Use(Metrics)
			r.Method(tc.method, "/api/v1/debts/{id}/schedule", next)
			r.Method(tc.method, "/health", next)
			r.NotFound(next)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := httpRequestsTotal.WithLabelValues(tc.method, tc.wantLabel, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}
