package artifacts

import (
	"gar-builder/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new artifacts feature.
func NewFeature(client storage.Client, bucket string, logger *zap.Logger) *Feature {
	return NewFeatureWithService(NewService(client, bucket, logger))
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "artifacts"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// NewFeatureWithService creates the feature around an existing service.
func NewFeatureWithService(svc *Service) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc)}
}
