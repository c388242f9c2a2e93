// Package platform defines the connector protocol for posting publications
// to external social platforms.
package platform

import (
	"context"
	"log/slog"
)

// PostContent is the rendered content of one posting attempt. The publisher
// engine composes it from a publication and its line items.
type PostContent struct {
	Message  string `json:"message"`
	Link     string `json:"link,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// PostResult carries the platform-side identifier of a created post.
type PostResult struct {
	PostID string `json:"post_id"`
}

// Connector posts content to a single group on one platform. PlatformGroupID
// is the platform's own identifier for the group, not the catalog ID.
type Connector interface {
	Post(ctx context.Context, platformGroupID string, content PostContent) (*PostResult, error)
}

// ConnectorFactory builds connectors from runtime configuration. Schema
// returns the JSON schema the configuration is validated against before
// Create is called.
type ConnectorFactory interface {
	ID() string
	Schema() map[string]any
	Create(config map[string]any, logger *slog.Logger) (Connector, error)
}
