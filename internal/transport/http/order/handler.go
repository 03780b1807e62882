package order

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	"github.com/mesa-labs/mesa/internal/presentation/http/response"
	service "github.com/mesa-labs/mesa/internal/service/order"
	receiptsvc "github.com/mesa-labs/mesa/internal/service/receipt"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/mesa-labs/mesa/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	receipts *receiptsvc.Service
	logger   *zap.Logger
	debug    bool
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, receipts *receiptsvc.Service, logger *zap.Logger, cfg config.Config) *Handler {
	return &Handler{svc: svc, receipts: receipts, logger: logger, debug: cfg.Debug}
}

// Register routes with the provided Echo instance. All order routes require
// an authenticated staff principal.
func Register(e *echo.Echo, h *Handler, resolver *auth.Resolver) {
	g := e.Group("/orders", auth.Middleware(resolver))
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.open)
	g.POST("/:id/items", h.addItems)
	g.PATCH("/:id/status", h.updateStatus)
	g.GET("/:id/receipt", h.receipt)
	g.GET("/:id/receipt/pdf", h.receiptPDF)
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

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, principal)
	if err != nil {
		return b.WithError(err).Build()
	}

	payload := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, dto.NewOrderResponse(order))
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

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, principal, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) open(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var req dto.OpenOrderRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.open", trace.WithAttributes(attribute.Int64("table.id", req.TableID)))
	defer span.End()

	order, err := h.svc.Open(ctx, principal, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithMessage("Order created successfully").
		WithData(dto.NewOrderResponse(order)).
		Build()
}

func (h *Handler) addItems(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var req dto.AddItemsRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.addItems", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.AddItems(ctx, principal, id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMessage("Items added to order successfully").
		WithData(dto.NewOrderResponse(order)).
		Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := dto.Validate(req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", req.Status),
	))
	defer span.End()

	order, err := h.svc.UpdateStatus(ctx, principal, id, req.Status)
	if err != nil {
		return b.WithError(err).Build()
	}

	payload := map[string]any{"order": dto.NewOrderResponse(order)}
	if order.Status == entity.OrderStatusClosed {
		payload["receipt"] = h.receipts.Build(order)
	}
	return b.WithData(payload).Build()
}

func (h *Handler) receipt(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.receipt", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	receipt, err := h.receipts.Get(ctx, principal, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(receipt).Build()
}

func (h *Handler) receiptPDF(c echo.Context) error {
	b := h.builder(c)

	principal, err := auth.FromContext(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.receiptPDF", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	document, receipt, err := h.receipts.GetPDF(ctx, principal, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, receipt.ReceiptNumber))
	return c.Blob(http.StatusOK, "application/pdf", document)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
