package food

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/presentation/http/response"
	service "github.com/mesa-labs/mesa/internal/service/food"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/mesa-labs/mesa/transport/http/food")

// Handler exposes menu management over HTTP.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
	debug  bool
}

// NewHandler constructs a food Handler.
func NewHandler(svc *service.Service, logger *zap.Logger, cfg config.Config) *Handler {
	return &Handler{svc: svc, logger: logger, debug: cfg.Debug}
}

// Module wires HTTP food handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, resolver *auth.Resolver) {
		Register(e, h, resolver)
	}),
)

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, resolver *auth.Resolver) {
	g := e.Group("/foods", auth.Middleware(resolver))
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) builder(c echo.Context) *response.Builder {
	return response.New(c).WithLogger(h.logger).WithDebug(h.debug)
}

func (h *Handler) list(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "foods.list")
	defer span.End()

	foods, err := h.svc.List(ctx, principal)
	if err != nil {
		return b.WithError(err).Build()
	}

	payload := make([]dto.FoodResponse, 0, len(foods))
	for _, f := range foods {
		payload = append(payload, dto.NewFoodResponse(f))
	}
	return b.WithData(payload).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "foods.getByID", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	food, err := h.svc.Get(ctx, principal, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewFoodResponse(food)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var req dto.CreateFoodRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	upload, err := imageUpload(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if upload != nil {
		defer upload.close()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "foods.create", trace.WithAttributes(attribute.String("food.name", req.Name)))
	defer span.End()

	food, err := h.svc.Create(ctx, principal, req, upload.toService())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithMessage("Food created successfully").
		WithData(dto.NewFoodResponse(food)).
		Build()
}

func (h *Handler) update(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var req dto.UpdateFoodRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	upload, err := imageUpload(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if upload != nil {
		defer upload.close()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "foods.update", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	food, err := h.svc.Update(ctx, principal, id, req, upload.toService())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMessage("Food updated successfully").
		WithData(dto.NewFoodResponse(food)).
		Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "foods.delete", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, principal, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMessage("Food deleted successfully").Build()
}

// openedUpload pairs a multipart file with its open handle.
type openedUpload struct {
	upload service.Upload
	closer func() error
}

func (u *openedUpload) toService() *service.Upload {
	if u == nil {
		return nil
	}
	return &u.upload
}

func (u *openedUpload) close() {
	if u != nil && u.closer != nil {
		_ = u.closer()
	}
}

// imageUpload extracts an optional "image" multipart part.
func imageUpload(c echo.Context) (*openedUpload, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile || err == echo.ErrUnsupportedMediaType {
			return nil, nil
		}
		// Non-multipart requests simply have no upload.
		return nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, errorbank.BadRequest("invalid image upload", errorbank.WithCause(err))
	}
	return &openedUpload{
		upload: service.Upload{Filename: header.Filename, Reader: file},
		closer: file.Close,
	}, nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
