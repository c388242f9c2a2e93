// Package logging provides a dry-run connector that logs posts instead of
// sending them anywhere. Useful for development and for previewing firings.
package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/getdivulga/divulga/pkg/platform"
)

type Connector struct {
	logger *slog.Logger
}

func NewConnector(logger *slog.Logger) *Connector {
	return &Connector{logger: logger}
}

func (c *Connector) Post(ctx context.Context, platformGroupID string, content platform.PostContent) (*platform.PostResult, error) {
	c.logger.InfoContext(ctx, "Dry-run post",
		"group_id", platformGroupID,
		"message", content.Message,
		"link", content.Link,
	)

	return &platform.PostResult{PostID: "dry-run-" + uuid.New().String()}, nil
}

type ConnectorFactory struct{}

func NewConnectorFactory() *ConnectorFactory {
	return &ConnectorFactory{}
}

func (*ConnectorFactory) ID() string {
	return "log"
}

func (f *ConnectorFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (f *ConnectorFactory) Create(config map[string]any, logger *slog.Logger) (platform.Connector, error) {
	return NewConnector(logger), nil
}
