package platform_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/platform/facebook"
	"github.com/getdivulga/divulga/pkg/platform/logging"
)

func newRegistry() *platform.Registry {
	registry := platform.NewRegistry(slog.Default())
	registry.Register(facebook.NewConnectorFactory())
	registry.Register(logging.NewConnectorFactory())

	return registry
}

func TestRegistry_Create(t *testing.T) {
	registry := newRegistry()

	connector, err := registry.Create("facebook", map[string]any{
		"access_token": "token-abc",
	})
	require.NoError(t, err)
	assert.NotNil(t, connector)
}

func TestRegistry_Create_UnknownPlatform(t *testing.T) {
	registry := newRegistry()

	_, err := registry.Create("myspace", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_Create_InvalidConfig(t *testing.T) {
	registry := newRegistry()

	// access_token is required by the facebook schema.
	_, err := registry.Create("facebook", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestRegistry_Create_DryRun(t *testing.T) {
	registry := newRegistry()

	connector, err := registry.Create("log", nil)
	require.NoError(t, err)

	result, err := connector.Post(t.Context(), "group-1", platform.PostContent{Message: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PostID)
}

func TestRegistry_Available(t *testing.T) {
	registry := newRegistry()

	assert.ElementsMatch(t, []string{"facebook", "log"}, registry.Available())
}
