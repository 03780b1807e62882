package table

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	"github.com/mesa-labs/mesa/internal/presentation/http/response"
	service "github.com/mesa-labs/mesa/internal/service/table"
)

var httpTracer = otel.Tracer("github.com/mesa-labs/mesa/transport/http/table")

// Handler exposes the public floor plan over HTTP. Guests see which tables
// are free without authenticating.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
	debug  bool
}

// NewHandler constructs a table Handler.
func NewHandler(svc *service.Service, logger *zap.Logger, cfg config.Config) *Handler {
	return &Handler{svc: svc, logger: logger, debug: cfg.Debug}
}

// Module wires HTTP table handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/tables")
	g.GET("", h.list)
	g.GET("/available", h.listAvailable)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c).WithLogger(h.logger).WithDebug(h.debug)

	ctx, span := httpTracer.Start(c.Request().Context(), "tables.list")
	defer span.End()

	tables, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTOs(tables)).Build()
}

func (h *Handler) listAvailable(c echo.Context) error {
	b := response.New(c).WithLogger(h.logger).WithDebug(h.debug)

	ctx, span := httpTracer.Start(c.Request().Context(), "tables.listAvailable")
	defer span.End()

	tables, err := h.svc.ListAvailable(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTOs(tables)).Build()
}

func toDTOs(tables []*entity.Table) []dto.TableResponse {
	payload := make([]dto.TableResponse, 0, len(tables))
	for _, table := range tables {
		payload = append(payload, dto.NewTableResponse(table))
	}
	return payload
}
