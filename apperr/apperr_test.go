package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/reader"
)

func TestFromMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"invalid config", fmt.Errorf("build: %w", layout.ErrInvalidConfig), CodeInvalidLayoutConfig, http.StatusBadRequest},
		{"measurement", fmt.Errorf("%w: boom", layout.ErrMeasurement), CodeMeasurementFailed, http.StatusBadGateway},
		{"stale", reader.ErrStaleLayout, CodeStaleLayout, http.StatusConflict},
		{"no session", reader.ErrNoSession, CodeNoSession, http.StatusConflict},
		{"book", fmt.Errorf("open x: %w", reader.ErrBookNotFound), CodeBookNotFound, http.StatusNotFound},
		{"other", errors.New("disk on fire"), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := From(tc.err)
		if got.Code != tc.code || got.HTTPStatus != tc.status {
			t.Fatalf("%s: got code=%s status=%d, want %s/%d", tc.name, got.Code, got.HTTPStatus, tc.code, tc.status)
		}
		if !errors.Is(got, tc.err) {
			t.Fatalf("%s: mapped error lost its cause", tc.name)
		}
	}
}

func TestFromKeepsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrPageNotFound)
	if got := From(wrapped); got != ErrPageNotFound {
		t.Fatalf("expected predefined error back, got %v", got)
	}
	if From(nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestWithDetailCopies(t *testing.T) {
	d := ErrInvalidParam.WithDetail("offset must be a number")
	if ErrInvalidParam.Detail != "" {
		t.Fatalf("predefined error mutated")
	}
	if d.Detail != "offset must be a number" || d.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected detail copy: %+v", d)
	}
}
