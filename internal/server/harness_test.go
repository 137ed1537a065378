package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/auth"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/database"
	"github.com/MarcoPoloResearchLab/linkden/internal/ids"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testOwnerID       = "owner"
	testSigningSecret = "test-signing-secret"
	testIssuer        = "linkden"
	testCookieName    = "linkden_session"
)

type testServer struct {
	handler  http.Handler
	db       *gorm.DB
	realtime *RealtimeDispatcher
	social   *social.Service
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "linkden.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	idProvider := ids.NewUUIDProvider()

	blockService, err := blocks.NewService(blocks.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("blocks service: %v", err)
	}
	settingsService, err := settings.NewService(settings.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	socialService, err := social.NewService(social.ServiceConfig{Database: db, IDProvider: idProvider})
	if err != nil {
		t.Fatalf("social service: %v", err)
	}
	analyticsService, err := analytics.NewService(analytics.ServiceConfig{Database: db, IDProvider: idProvider})
	if err != nil {
		t.Fatalf("analytics service: %v", err)
	}
	contactService, err := contact.NewService(contact.ServiceConfig{
		Database:   db,
		Settings:   settingsService,
		Mailer:     contact.LogMailer{},
		IDProvider: idProvider,
	})
	if err != nil {
		t.Fatalf("contact service: %v", err)
	}

	validator, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		SigningSecret: []byte(testSigningSecret),
		Issuer:        testIssuer,
		CookieName:    testCookieName,
	})
	if err != nil {
		t.Fatalf("session validator: %v", err)
	}
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(testSigningSecret),
		Issuer:        testIssuer,
		TokenTTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	token, _, err := issuer.IssueSessionToken(auth.Identity{UserID: testOwnerID})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	realtime := NewRealtimeDispatcher()
	handler, err := NewHTTPHandler(Dependencies{
		Sessions:  validator,
		OwnerID:   testOwnerID,
		Blocks:    blockService,
		Settings:  settingsService,
		Social:    socialService,
		Analytics: analyticsService,
		Contact:   contactService,
		Realtime:  realtime,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct http handler: %v", err)
	}
	return &testServer{handler: handler, db: db, realtime: realtime, social: socialService, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		request.Header.Set("Authorization", "Bearer "+s.token)
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) createBlock(t *testing.T, id, kind, title string) blocks.Block {
	t.Helper()
	recorder := s.do(t, http.MethodPost, "/api/blocks", blocks.CreateRequest{
		ID:        id,
		Type:      kind,
		Title:     &title,
		Position:  1 << 20,
		IsEnabled: true,
	}, true)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create %s: status %d body %s", id, recorder.Code, recorder.Body.String())
	}
	var created blocks.Block
	decodeJSON(t, recorder, &created)
	return created
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decode %q: %v", recorder.Body.String(), err)
	}
}
