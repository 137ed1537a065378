// Package client talks to the LinkDen HTTP API. It implements builder.API so
// the builder can drive a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

var (
	errMissingBaseURL = errors.New("client: base url is required")
	// ErrUnauthorized indicates a missing, expired or foreign session.
	ErrUnauthorized = errors.New("client: unauthorized")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Slug       string
	Code       string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	message := fmt.Sprintf("client: status %d", e.StatusCode)
	if e.Slug != "" {
		message += ": " + e.Slug
	}
	if e.Code != "" {
		message += " (" + e.Code + ")"
	}
	return message
}

// Is lets callers match API errors against the service sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case blocks.ErrBlockNotFound:
		return e.StatusCode == http.StatusNotFound
	case blocks.ErrDuplicateBlockID:
		return e.StatusCode == http.StatusConflict
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case contact.ErrDeliveryFailed:
		return e.Slug == "delivery_failed"
	default:
		return false
	}
}

// FieldErrors returns the validation messages of a rejected contact request.
func (e *APIError) FieldErrors() contact.FieldErrors {
	if len(e.Fields) == 0 {
		return nil
	}
	return contact.FieldErrors(e.Fields)
}

type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a LinkDen API client. Admin calls need a session token.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) ListBlocks(ctx context.Context) ([]blocks.Block, error) {
	var list []blocks.Block
	if err := c.doJSON(ctx, http.MethodGet, "/api/blocks", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) HasDraft(ctx context.Context) (bool, error) {
	var response struct {
		HasDraft bool `json:"hasDraft"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/blocks/draft", nil, &response); err != nil {
		return false, err
	}
	return response.HasDraft, nil
}

func (c *Client) CreateBlock(ctx context.Context, request blocks.CreateRequest) (blocks.Block, error) {
	var created blocks.Block
	err := c.doJSON(ctx, http.MethodPost, "/api/blocks", request, &created)
	return created, err
}

func (c *Client) UpdateBlock(ctx context.Context, blockID string, fields blocks.UpdateFields) (blocks.Block, error) {
	var updated blocks.Block
	err := c.doJSON(ctx, http.MethodPatch, "/api/blocks/"+url.PathEscape(blockID), fields, &updated)
	return updated, err
}

func (c *Client) ToggleBlock(ctx context.Context, blockID string, enabled bool) (blocks.Block, error) {
	var updated blocks.Block
	body := map[string]bool{"isEnabled": enabled}
	err := c.doJSON(ctx, http.MethodPost, "/api/blocks/"+url.PathEscape(blockID)+"/enabled", body, &updated)
	return updated, err
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/blocks/"+url.PathEscape(blockID), nil, nil)
}

func (c *Client) ReorderBlocks(ctx context.Context, updates []blocks.PositionUpdate) error {
	body := map[string][]blocks.PositionUpdate{"updates": updates}
	return c.doJSON(ctx, http.MethodPost, "/api/blocks/reorder", body, nil)
}

func (c *Client) PublishAll(ctx context.Context) (int, error) {
	var response struct {
		Published int `json:"published"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/blocks/publish", nil, &response); err != nil {
		return 0, err
	}
	return response.Published, nil
}

func (c *Client) GetSettings(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/settings", nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *Client) UpdateSettings(ctx context.Context, entries []settings.Entry) error {
	return c.doJSON(ctx, http.MethodPut, "/api/settings", entries, nil)
}

func (c *Client) ListSocial(ctx context.Context, activeOnly bool) ([]social.Network, error) {
	path := "/api/social"
	if activeOnly {
		path += "?activeOnly=true"
	}
	var networks []social.Network
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

// UpsertSocial creates or replaces the network with the slug.
func (c *Client) UpsertSocial(ctx context.Context, network social.Network) (social.Network, error) {
	body := map[string]any{
		"url":      network.URL,
		"label":    network.Label,
		"isActive": network.IsActive,
		"position": network.Position,
	}
	var stored social.Network
	err := c.doJSON(ctx, http.MethodPut, "/api/social/"+url.PathEscape(network.Slug), body, &stored)
	return stored, err
}

func (c *Client) DeleteSocial(ctx context.Context, slug string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/social/"+url.PathEscape(slug), nil, nil)
}

func (c *Client) ClickCounts(ctx context.Context) ([]analytics.BlockCount, error) {
	var counts []analytics.BlockCount
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/clicks", nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) Submissions(ctx context.Context) ([]contact.Submission, error) {
	var submissions []contact.Submission
	if err := c.doJSON(ctx, http.MethodGet, "/api/contact/submissions", nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// PreviewHTML fetches the draft page. An empty mode uses the stored setting.
func (c *Client) PreviewHTML(ctx context.Context, mode theme.ColorMode) (string, error) {
	path := "/admin/preview"
	if mode != "" {
		path += "?mode=" + url.QueryEscape(string(mode))
	}
	response, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	if err := checkStatus(response); err != nil {
		return "", err
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("client: read preview: %w", err)
	}
	return string(body), nil
}

// SubmitContact posts a visitor message. An invalid request is rejected with
// contact.FieldErrors before anything is sent; server-side rejections come
// back as an *APIError carrying field errors.
func (c *Client) SubmitContact(ctx context.Context, request contact.Request) error {
	if fieldErrs := contact.Validate(request); fieldErrs != nil {
		return fieldErrs
	}
	return c.doJSON(ctx, http.MethodPost, "/api/public/contact", request.Normalize(), nil)
}

// TrackClick records a click on a block.
func (c *Client) TrackClick(ctx context.Context, blockID string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/public/click", map[string]string{"blockId": blockID}, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, target any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(encoded)
	}
	response, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if err := checkStatus(response); err != nil {
		c.logger.Debug("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	if target == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	request, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return response, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if body != http.NoBody {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	return request, nil
}

func checkStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{StatusCode: response.StatusCode}
	var body struct {
		Error  string            `json:"error"`
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(io.LimitReader(response.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Slug = body.Error
		apiErr.Code = body.Code
		apiErr.Fields = body.Fields
	}
	return apiErr
}
