package cmd

import (
	"log/slog"

	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/platform/facebook"
	"github.com/getdivulga/divulga/pkg/platform/logging"
)

// NewPlatformRegistry builds the connector registry with every native
// platform registered.
func NewPlatformRegistry(logger *slog.Logger) *platform.Registry {
	registry := platform.NewRegistry(logger)
	registry.Register(facebook.NewConnectorFactory())
	registry.Register(logging.NewConnectorFactory())

	return registry
}
