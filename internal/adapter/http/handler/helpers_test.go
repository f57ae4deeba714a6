package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/fincore/internal/adapter/http/dto"
	"github.com/iho/fincore/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/movements?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/movements?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"movement not found", domain.ErrMovementNotFound, http.StatusNotFound},
		{"wrapped debt not found", fmt.Errorf("load: %w", domain.ErrDebtNotFound), http.StatusNotFound},
		{"alert not found", domain.ErrAlertNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"bad amount format", domain.ErrInvalidAmountFormat, http.StatusBadRequest},
		{"bad loan", domain.ErrInvalidLoanParameters, http.StatusBadRequest},
		{"bad range", domain.ErrInvalidPeriodRange, http.StatusBadRequest},
		{"paid entry", domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"expired rule", domain.ErrRuleExpired, http.StatusConflict},
		{"posting already confirmed", domain.ErrPostingNotPending, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func TestToday(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/budgets/status?as_of=2026-03-10", nil)
	got, err := today(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format("2006-01-02") != "2026-03-10" {
		t.Fatalf("expected 2026-03-10, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/budgets/status?as_of=10.03.2026", nil)
	if _, err := today(req); !errors.Is(err, domain.ErrInvalidPeriodRange) {
		t.Fatalf("expected ErrInvalidPeriodRange, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/budgets/status", nil)
	got, err = today(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 0 || got.Location().String() != "UTC" {
		t.Fatalf("expected midnight UTC, got %s", got)
	}
}
