package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]string
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("invalid json body: %v", jerr)
	}
	return rec, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
		{domain.ErrTokenInvalid, http.StatusUnauthorized, "invalid token"},
		{domain.ErrTokenWrongType, http.StatusUnauthorized, "invalid token"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{domain.ErrInvalidRole, http.StatusUnprocessableEntity, "invalid role"},
	}

	for _, tc := range cases {
		rec, body := renderError(t, tc.err)
		if rec.Code != tc.status {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.status, rec.Code)
		}
		if body["error"] != tc.msg {
			t.Errorf("%v: expected message %q, got %q", tc.err, tc.msg, body["error"])
		}
	}
}

func TestHTTPErrorHandler_WrappedDomainError(t *testing.T) {
	rec, body := renderError(t, fmt.Errorf("find user: %w", domain.ErrUserNotFound))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for wrapped sentinel, got %d", rec.Code)
	}
	if body["error"] != "user not found" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestHTTPErrorHandler_EchoHTTPErrorPassthrough(t *testing.T) {
	rec, body := renderError(t, echo.NewHTTPError(http.StatusUnprocessableEntity, "username is required"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if body["error"] != "username is required" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestHTTPErrorHandler_UnexpectedErrorStaysGeneric(t *testing.T) {
	rec, body := renderError(t, errors.New("pq: connection reset by peer"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %q", body["error"])
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("priming response: %v", err)
	}

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK {
		t.Fatalf("committed response overwritten: %d", rec.Code)
	}
}
