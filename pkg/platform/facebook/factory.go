package facebook

import (
	"log/slog"
	"time"

	"github.com/getdivulga/divulga/pkg/platform"
)

type ConnectorFactory struct{}

func NewConnectorFactory() *ConnectorFactory {
	return &ConnectorFactory{}
}

func (*ConnectorFactory) ID() string {
	return "facebook"
}

func (f *ConnectorFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"access_token": map[string]any{
				"type":        "string",
				"description": "Graph API access token with groups publishing permission",
				"minLength":   1,
			},
			"base_url": map[string]any{
				"type":        "string",
				"description": "Graph API base URL, overridable for testing",
				"default":     DefaultBaseURL,
			},
			"timeout_seconds": map[string]any{
				"type":        "number",
				"description": "HTTP timeout for Graph API calls",
				"default":     30,
				"minimum":     1,
			},
		},
		"required": []string{"access_token"},
	}
}

func (f *ConnectorFactory) Create(config map[string]any, logger *slog.Logger) (platform.Connector, error) {
	accessToken, _ := config["access_token"].(string)
	baseURL, _ := config["base_url"].(string)

	timeout := defaultTimeout
	if seconds, ok := config["timeout_seconds"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return NewConnector(accessToken, baseURL, timeout, logger), nil
}
