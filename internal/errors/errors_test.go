package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAs(t *testing.T) {
	notFound := NotFound("chart not found")
	if got := As(fmt.Errorf("render: %w", notFound)); got != notFound {
		t.Errorf("As() = %v, want the wrapped AppError", got)
	}

	got := As(stderrors.New("boom"))
	if got.Code != CodeInternal || got.StatusCode != http.StatusInternalServerError {
		t.Errorf("As() = %+v, want an internal error", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("status 503")
	err := UpstreamWrap(cause, "Sales API unavailable")
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable with errors.Is")
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()

	WriteError(w, logger, UpstreamWrap(stderrors.New("status 503"), "Sales API unavailable"), "req-1")

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      ErrorCode `json:"code"`
			RequestID string    `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error.Code != CodeUpstream || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()

	WriteSuccessWithHeaders(w, map[string]int{"total": 3}, map[string]string{"Cache-Control": "no-store"})

	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("custom header not set")
	}

	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
}
