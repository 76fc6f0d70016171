package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/models"
)

const maxResponseBytes = 8 << 20

// Client is the REST Countries HTTP client. It performs exactly one GET per call
// and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Lookup = (*Client)(nil)

// NewClient creates a client for cfg. A nil http.Client gets one with cfg.Timeout.
func NewClient(cfg *Config, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/",
		httpClient: httpClient,
		logger:     log,
	}
}

// SearchByName calls GET {base}/name/{name}
func (c *Client) SearchByName(ctx context.Context, name string) ([]models.Country, error) {
	return c.get(ctx, "name", name)
}

// SearchByCode calls GET {base}/alpha/{code}
func (c *Client) SearchByCode(ctx context.Context, code string) ([]models.Country, error) {
	return c.get(ctx, "alpha", code)
}

func (c *Client) endpoint(resource, value string) string {
	return c.baseURL + resource + "/" + url.PathEscape(value)
}

func (c *Client) get(ctx context.Context, resource, value string) ([]models.Country, error) {
	endpoint := c.endpoint(resource, value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDecodingFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("country lookup failed", map[string]interface{}{
			"url":      endpoint,
			"duration": time.Since(start).String(),
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("country lookup", map[string]interface{}{
		"url":      endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, models.NewStatusError(resp.StatusCode)
	}

	var countries []models.Country
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&countries); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDecodingFailed, err)
	}

	return countries, nil
}
