package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
)

func validContactPayload() map[string]string {
	return map[string]string{
		"name":    "Ada",
		"email":   "ada" + "@example.com",
		"message": "Hello there",
	}
}

func countSubmissions(t *testing.T, server *testServer) int64 {
	t.Helper()
	var count int64
	if err := server.db.Model(&contact.Submission{}).Count(&count).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	return count
}

func TestPublicPageShowsOnlyPublishedBlocks(t *testing.T) {
	server := newTestServer(t)
	server.createBlock(t, "blk_live", "header", "Published heading")
	server.do(t, http.MethodPost, "/api/blocks/publish", nil, true)
	server.createBlock(t, "blk_draft", "header", "Unpublished heading")
	server.do(t, http.MethodPatch, "/api/blocks/blk_live", map[string]any{"title": "Edited heading"}, true)

	recorder := server.do(t, http.MethodGet, "/", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("public page: status %d", recorder.Code)
	}
	page := recorder.Body.String()
	if !strings.Contains(page, "Published heading") {
		t.Fatalf("expected last published snapshot on the public page")
	}
	if strings.Contains(page, "Edited heading") || strings.Contains(page, "Unpublished heading") {
		t.Fatalf("drafts must not leak onto the public page")
	}

	preview := server.do(t, http.MethodGet, "/admin/preview?mode=dark", nil, true)
	body := preview.Body.String()
	if !strings.Contains(body, "Edited heading") || !strings.Contains(body, "Unpublished heading") {
		t.Fatalf("preview shows current drafts: %s", body)
	}
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Fatalf("preview should honour the requested colour mode")
	}
}

func TestLinkRedirectTracksClick(t *testing.T) {
	server := newTestServer(t)
	server.createBlock(t, "blk_docs", "link", "Docs")
	server.do(t, http.MethodPatch, "/api/blocks/blk_docs", map[string]any{"url": "https://docs.example.com"}, true)

	recorder := server.do(t, http.MethodGet, "/go/blk_docs", nil, false)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unpublished links are not public, got %d", recorder.Code)
	}

	server.do(t, http.MethodPost, "/api/blocks/publish", nil, true)
	request := httptest.NewRequest(http.MethodGet, "/go/blk_docs", http.NoBody)
	request.Header.Set("Referer", "https://social.example.com/post")
	recorder = httptest.NewRecorder()
	server.handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "https://docs.example.com" {
		t.Fatalf("expected redirect, got %d %q", recorder.Code, recorder.Header().Get("Location"))
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var events []analytics.ClickEvent
		if err := server.db.Find(&events).Error; err != nil {
			t.Fatalf("load clicks: %v", err)
		}
		if len(events) == 1 {
			if events[0].BlockID != "blk_docs" || events[0].Referrer == nil || *events[0].Referrer != "https://social.example.com/post" {
				t.Fatalf("unexpected click %+v", events[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected one tracked click, got %d", len(events))
		}
		time.Sleep(10 * time.Millisecond)
	}

	counts := server.do(t, http.MethodGet, "/api/analytics/clicks", nil, true)
	var parsed []analytics.BlockCount
	decodeJSON(t, counts, &parsed)
	if len(parsed) != 1 || parsed[0].Clicks != 1 {
		t.Fatalf("unexpected counts %+v", parsed)
	}
}

func TestSubmitContactJSON(t *testing.T) {
	server := newTestServer(t)

	invalid := validContactPayload()
	invalid["email"] = "not-an-email"
	recorder := server.do(t, http.MethodPost, "/api/public/contact", invalid, false)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, recorder, &body)
	if body.Error != errorValidationFailed || body.Fields["email"] == "" {
		t.Fatalf("unexpected validation body %+v", body)
	}
	if countSubmissions(t, server) != 0 {
		t.Fatalf("invalid submissions must not be stored")
	}

	valid := validContactPayload()
	valid["message"] = "<b>Hello</b> there"
	recorder = server.do(t, http.MethodPost, "/api/public/contact", valid, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected success, got %d %s", recorder.Code, recorder.Body.String())
	}
	if countSubmissions(t, server) != 1 {
		t.Fatalf("expected exactly one stored submission")
	}
	var stored contact.Submission
	server.db.First(&stored)
	if stored.Message != "Hello there" {
		t.Fatalf("markup should be stripped, got %q", stored.Message)
	}

	listed := server.do(t, http.MethodGet, "/api/contact/submissions", nil, true)
	var submissions []contact.Submission
	decodeJSON(t, listed, &submissions)
	if len(submissions) != 1 {
		t.Fatalf("expected one listed submission, got %d", len(submissions))
	}
}

func TestContactFormPostRendersOutcome(t *testing.T) {
	server := newTestServer(t)
	server.createBlock(t, "blk_form", "contact_form", "Say hi")
	server.do(t, http.MethodPost, "/api/blocks/publish", nil, true)

	post := func(values url.Values) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		recorder := httptest.NewRecorder()
		server.handler.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := post(url.Values{"blockId": {"blk_form"}, "name": {"Ada"}, "email": {""}, "message": {"Hi"}})
	if recorder.Code != http.StatusBadRequest || !strings.Contains(recorder.Body.String(), "Email is required.") {
		t.Fatalf("expected inline validation error, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `value="Ada"`) {
		t.Fatalf("entered values should be kept")
	}

	payload := validContactPayload()
	recorder = post(url.Values{"blockId": {"blk_form"}, "name": {payload["name"]}, "email": {payload["email"]}, "message": {payload["message"]}})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected success page, got %d", recorder.Code)
	}
	if countSubmissions(t, server) != 1 {
		t.Fatalf("expected exactly one submission")
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	recorder := server.do(t, http.MethodGet, "/healthz", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
}

func TestSocialRoutes(t *testing.T) {
	server := newTestServer(t)
	recorder := server.do(t, http.MethodPut, "/api/social/GitHub", map[string]any{"url": "https://github.com/ada", "label": "GitHub"}, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("upsert: status %d body %s", recorder.Code, recorder.Body.String())
	}
	server.do(t, http.MethodPut, "/api/social/x", map[string]any{"url": "https://x.com/ada", "isActive": false}, true)

	recorder = server.do(t, http.MethodGet, "/api/social?activeOnly=true", nil, true)
	var networks []struct {
		Slug string `json:"slug"`
	}
	decodeJSON(t, recorder, &networks)
	if len(networks) != 1 || networks[0].Slug != "github" {
		t.Fatalf("unexpected active networks %+v", networks)
	}

	if recorder := server.do(t, http.MethodDelete, "/api/social/missing", nil, true); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if recorder := server.do(t, http.MethodPut, "/api/social/mastodon", map[string]any{"url": ""}, true); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", recorder.Code)
	}
}
