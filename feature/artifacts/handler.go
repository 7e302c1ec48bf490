package artifacts

import (
	"net/url"
	"path"
	"strings"

	"gar-builder/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Handler serves stored artifacts over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the artifact routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/artifacts")
	group.Get("/", h.HandleList)
	group.Get("/object/*", h.HandleDownload)
}

// HandleList returns the artifacts under the optional ?prefix= query.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	items, err := h.service.List(c.Context(), c.Query("prefix"))
	if err != nil {
		l.Error("Artifact listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleDownload streams one artifact, e.g. GET /artifacts/object/regions/77.csv.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	object, err := url.PathUnescape(c.Params("*"))
	if err != nil || object == "" || strings.Contains(object, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid object key",
		})
	}

	rc, info, err := h.service.Open(c.Context(), object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "artifact not found",
			})
		}
		l.Error("Artifact download failed", zap.String("object", object), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, contentTypeCSV)
	c.Attachment(path.Base(object))
	return c.SendStream(rc, int(info.Size))
}
