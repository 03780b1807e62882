package receipt

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/billing"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	"github.com/mesa-labs/mesa/internal/pdf"
	ordersvc "github.com/mesa-labs/mesa/internal/service/order"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/mesa-labs/mesa/service/receipt")

// Service derives printable receipts from orders. It never mutates them; an
// open order can preview its receipt with current time standing in for the
// missing close timestamp.
type Service struct {
	orders   *ordersvc.Service
	renderer *pdf.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// Module provides the receipt service to Fx.
var Module = fx.Provide(NewService)

// NewService wires a new receipt Service.
func NewService(orders *ordersvc.Service, renderer *pdf.Renderer, logger *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		renderer: renderer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get loads an order and formats its receipt.
func (s *Service) Get(ctx context.Context, principal auth.Principal, orderID int64) (dto.Receipt, error) {
	ctx, span := serviceTracer.Start(ctx, "ReceiptService.Get", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.orders.Get(ctx, principal, orderID)
	if err != nil {
		return dto.Receipt{}, err
	}
	return s.Build(order), nil
}

// GetPDF loads an order and renders its receipt as a PDF document.
func (s *Service) GetPDF(ctx context.Context, principal auth.Principal, orderID int64) ([]byte, dto.Receipt, error) {
	ctx, span := serviceTracer.Start(ctx, "ReceiptService.GetPDF", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	receipt, err := s.Get(ctx, principal, orderID)
	if err != nil {
		return nil, dto.Receipt{}, err
	}
	document, err := s.renderer.Render(receipt)
	if err != nil {
		s.logger.Error("receipt pdf render failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, dto.Receipt{}, errorbank.Internal("failed to render receipt PDF", errorbank.WithCause(err))
	}
	return document, receipt, nil
}

// Build formats an order into its receipt view. The summary recomputes tax
// and service charge from the item subtotals at the fixed 10%/5% rates, so an
// open-order preview shows the same numbers a close would produce.
func (s *Service) Build(order *entity.Order) dto.Receipt {
	totals := billing.Settle(billing.Subtotal(order.Items))

	date := s.now()
	if order.ClosedAt != nil {
		date = *order.ClosedAt
	}

	paymentStatus := "pending"
	if !order.IsOpen() {
		paymentStatus = "paid"
	}

	receipt := dto.Receipt{
		ReceiptNumber: ReceiptNumber(order.ID),
		OrderID:       order.ID,
		Date:          date,
		Items:         make([]dto.ReceiptItem, 0, len(order.Items)),
		Summary: dto.ReceiptSummary{
			Subtotal:          totals.Subtotal.StringFixed(2),
			Tax:               totals.Tax.StringFixed(2),
			TaxRate:           "10%",
			ServiceCharge:     totals.ServiceCharge.StringFixed(2),
			ServiceChargeRate: "5%",
			GrandTotal:        totals.GrandTotal.StringFixed(2),
		},
		OrderInfo: dto.ReceiptOrderInfo{
			OpenedAt: order.OpenedAt,
			ClosedAt: order.ClosedAt,
			Status:   string(order.Status),
			Notes:    order.Notes,
		},
		PaymentStatus: paymentStatus,
	}

	if order.Table != nil {
		receipt.Table = dto.ReceiptTable{
			Number:   order.Table.Number,
			Capacity: order.Table.Capacity,
		}
	}

	for _, item := range order.Items {
		line := dto.ReceiptItem{
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice.StringFixed(2),
			Subtotal:            item.Subtotal.StringFixed(2),
			SpecialInstructions: item.SpecialInstructions,
		}
		if item.Food != nil {
			line.Name = item.Food.Name
			line.Type = string(item.Food.Type)
		}
		receipt.Items = append(receipt.Items, line)
	}

	return receipt
}

// ReceiptNumber formats the fixed receipt number for an order id.
func ReceiptNumber(orderID int64) string {
	return fmt.Sprintf("RCP-%06d", orderID)
}
