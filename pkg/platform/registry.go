package platform

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Registry keeps the available connector factories keyed by platform ID.
type Registry struct {
	logger    *slog.Logger
	factories map[string]ConnectorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]ConnectorFactory),
	}
}

func (r *Registry) Register(factory ConnectorFactory) {
	r.factories[factory.ID()] = factory
}

func (r *Registry) Available() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}

	return ids
}

// Create validates the configuration against the factory's schema and builds
// the connector.
func (r *Registry) Create(platformID string, config map[string]any) (Connector, error) {
	factory, ok := r.factories[platformID]
	if !ok {
		return nil, fmt.Errorf("platform '%s' not registered", platformID)
	}

	if config == nil {
		config = map[string]any{}
	}

	if err := validateConfig(config, factory.Schema()); err != nil {
		return nil, fmt.Errorf("invalid configuration for platform '%s': %w", platformID, err)
	}

	return factory.Create(config, r.logger.With("platform", platformID))
}

func validateConfig(config, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, validationError := range result.Errors() {
			messages = append(messages, validationError.String())
		}

		return fmt.Errorf("schema validation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}
