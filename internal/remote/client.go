// Package remote reads collections from the Record Store for the sync client.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

const (
	healthEndpoint = "/health"
	syncEndpoint   = "/api/v1/sync/"

	// DefaultTimeout bounds every request so the client never waits indefinitely.
	DefaultTimeout = 5 * time.Second
)

// Client talks to the Record Store bulk-read endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client. An empty baseURL yields a client that is never available.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// syncEnvelope is the success shape of GET /api/v1/sync/:collection.
type syncEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Available reports whether the Record Store answers its health check.
func (c *Client) Available(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthEndpoint, nil)
	if err != nil {
		c.logger.Warn("Failed to build health request", zap.Error(err))
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Info("Record store unreachable", zap.String("url", c.baseURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FetchCollection decodes every row of the named collection into dst, which must be a
// pointer to a slice.
func (c *Client) FetchCollection(ctx context.Context, name string, dst any) error {
	if c.baseURL == "" {
		return apperr.Unavailable("record store URL is not configured", nil)
	}
	endpoint := c.baseURL + syncEndpoint + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperr.Internal("build sync request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Unavailable("fetch "+name, err)
	}
	defer resp.Body.Close()

	var env syncEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperr.Unavailable("decode "+name, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := resp.Status
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		return apperr.Unavailable(fmt.Sprintf("fetch %s: %s", name, msg), nil)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return apperr.Unavailable("decode "+name, err)
	}
	return nil
}

// FetchDataset pulls every replicated collection. Any failure aborts the pull.
func (c *Client) FetchDataset(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset
	targets := map[string]any{
		domain.CollectionMembers:    &ds.Members,
		domain.CollectionTrainers:   &ds.Trainers,
		domain.CollectionVisitors:   &ds.Visitors,
		domain.CollectionInvoices:   &ds.Invoices,
		domain.CollectionFollowUps:  &ds.FollowUps,
		domain.CollectionActivities: &ds.Activities,
		domain.CollectionCheckIns:   &ds.CheckIns,
	}
	for _, name := range domain.ReplicatedCollections {
		if err := c.FetchCollection(ctx, name, targets[name]); err != nil {
			return domain.Dataset{}, err
		}
	}
	ds.Normalize()
	c.logger.Info("Pulled dataset from record store",
		zap.Int("members", len(ds.Members)),
		zap.Int("invoices", len(ds.Invoices)),
		zap.Int("activities", len(ds.Activities)))
	return ds, nil
}
