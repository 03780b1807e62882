package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/entity"
)

// Event names published on the order lifecycle topic.
const (
	EventOrderOpened = "order.opened"
	EventOrderClosed = "order.closed"
)

// LifecycleEvent is emitted when an order transitions.
type LifecycleEvent struct {
	Event         string     `json:"event"`
	OrderID       int64      `json:"order_id"`
	TableID       int64      `json:"table_id"`
	Status        string     `json:"status"`
	TotalAmount   string     `json:"total_amount"`
	TaxAmount     string     `json:"tax_amount"`
	ServiceCharge string     `json:"service_charge"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

func (s *Service) publishEvent(ctx context.Context, name string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := LifecycleEvent{
		Event:         name,
		OrderID:       order.ID,
		TableID:       order.TableID,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		TaxAmount:     order.TaxAmount.StringFixed(2),
		ServiceCharge: order.ServiceCharge.StringFixed(2),
		OpenedAt:      order.OpenedAt,
		ClosedAt:      order.ClosedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("event", name), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		s.logger.Error("publish order event", zap.String("event", name), zap.Error(err))
	}
}
