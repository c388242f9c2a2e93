// Package facebook posts publications to Facebook groups through the Graph
// API feed endpoint.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getdivulga/divulga/pkg/platform"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

const defaultTimeout = 30 * time.Second

type Connector struct {
	client      *http.Client
	logger      *slog.Logger
	baseURL     string
	accessToken string
}

func NewConnector(accessToken, baseURL string, timeout time.Duration, logger *slog.Logger) *Connector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Connector{
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
	}
}

type postResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Post publishes content to the group's feed and returns the platform post
// ID.
func (c *Connector) Post(ctx context.Context, platformGroupID string, content platform.PostContent) (*platform.PostResult, error) {
	form := url.Values{}
	form.Set("message", content.Message)
	form.Set("access_token", c.accessToken)

	if content.Link != "" {
		form.Set("link", content.Link)
	}

	endpoint := fmt.Sprintf("%s/%s/feed", c.baseURL, platformGroupID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp.StatusCode, body)
	}

	var created postResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unexpected graph api response: %w", err)
	}

	c.logger.Info("Posted to group feed", "group_id", platformGroupID, "post_id", created.ID)

	return &platform.PostResult{PostID: created.ID}, nil
}

// ValidateToken checks that the configured access token is still usable.
func (c *Connector) ValidateToken(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/me?access_token=%s", c.baseURL, url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return graphError(resp.StatusCode, body)
	}

	return nil
}

func graphError(statusCode int, body []byte) error {
	var graphErr errorResponse
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return fmt.Errorf("graph api error %d (%s): %s",
			graphErr.Error.Code, graphErr.Error.Type, graphErr.Error.Message)
	}

	return fmt.Errorf("graph api returned status %d: %s", statusCode, string(body))
}
