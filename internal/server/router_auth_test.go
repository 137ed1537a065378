package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarcoPoloResearchLab/linkden/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSessionValidator struct {
	requestClaims auth.SessionClaims
	requestErr    error
	tokenClaims   auth.SessionClaims
	tokenErr      error
	tokens        []string
}

func (s *stubSessionValidator) ValidateRequest(*http.Request) (auth.SessionClaims, error) {
	return s.requestClaims, s.requestErr
}

func (s *stubSessionValidator) ValidateToken(token string) (auth.SessionClaims, error) {
	s.tokens = append(s.tokens, token)
	return s.tokenClaims, s.tokenErr
}

func newAuthTestContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, path, http.NoBody)
	return ctx, recorder
}

func TestAuthorizeRequestLogsExpiredTokenAtInfoLevel(t *testing.T) {
	ctx, recorder := newAuthTestContext("/api/blocks")
	core, logs := observer.New(zapcore.DebugLevel)
	handler := &httpHandler{
		sessions:  &stubSessionValidator{requestErr: auth.ErrExpiredSessionToken},
		profileID: testOwnerID,
		logger:    zap.New(core),
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.InfoLevel {
		t.Fatalf("expected info level for expired token, got %s", entry.Level)
	}
	if entry.Message != "session validation failed" {
		t.Fatalf("unexpected log message: %q", entry.Message)
	}
	hasExpired := false
	for _, field := range entry.Context {
		if field.Type == zapcore.ErrorType && errors.Is(field.Interface.(error), auth.ErrExpiredSessionToken) {
			hasExpired = true
			break
		}
	}
	if !hasExpired {
		t.Fatalf("expected expired token error context, got %v", entry.Context)
	}
}

func TestAuthorizeRequestLogsUnexpectedTokenErrorAtWarnLevel(t *testing.T) {
	ctx, recorder := newAuthTestContext("/api/blocks")
	core, logs := observer.New(zapcore.DebugLevel)
	handler := &httpHandler{
		sessions:  &stubSessionValidator{requestErr: errors.New("signature mismatch")},
		profileID: testOwnerID,
		logger:    zap.New(core),
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %v", entries)
	}
}

func TestAuthorizeRequestRejectsNonOwner(t *testing.T) {
	ctx, recorder := newAuthTestContext("/api/blocks")
	handler := &httpHandler{
		sessions:  &stubSessionValidator{requestClaims: auth.SessionClaims{UserID: "intruder"}},
		profileID: testOwnerID,
		logger:    zap.NewNop(),
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if _, exists := ctx.Get(sessionUserIDContextKey); exists {
		t.Fatalf("non-owner must not be stored on the context")
	}
}

func TestAuthorizeRequestFallsBackToQueryToken(t *testing.T) {
	ctx, recorder := newAuthTestContext("/api/blocks/stream?access_token=stream-token")
	validator := &stubSessionValidator{
		requestErr:  auth.ErrMissingSessionToken,
		tokenClaims: auth.SessionClaims{UserID: testOwnerID},
	}
	handler := &httpHandler{sessions: validator, profileID: testOwnerID, logger: zap.NewNop()}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusOK || ctx.IsAborted() {
		t.Fatalf("expected request to pass, got %d", recorder.Code)
	}
	if len(validator.tokens) != 1 || validator.tokens[0] != "stream-token" {
		t.Fatalf("expected query token to be validated, got %v", validator.tokens)
	}
	if ctx.GetString(sessionUserIDContextKey) != testOwnerID {
		t.Fatalf("expected owner on the context")
	}
}
