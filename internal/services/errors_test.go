package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"mediaproxy/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "deliver", "create", "video codec is required", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatal("expected validation marker")
	}
	if !strings.Contains(err.Error(), "deliver: create: video codec is required") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := services.Wrap(nil, "probe", "inspect", "", errors.New("boom"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient marker")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "capabilities", "probe", "", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("cause message must pass through verbatim: %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrValidation, "", "", "bad", nil), http.StatusUnprocessableEntity},
		{services.Wrap(services.ErrNotFound, "", "", "gone", nil), http.StatusNotFound},
		{services.Wrap(services.ErrConflict, "", "", "busy", nil), http.StatusConflict},
		{services.Wrap(services.ErrConfiguration, "", "", "bad config", nil), http.StatusBadRequest},
		{errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}
