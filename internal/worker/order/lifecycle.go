package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/messaging"
	ordersvc "github.com/mesa-labs/mesa/internal/service/order"
	"github.com/mesa-labs/mesa/internal/worker"
)

var workerTracer = otel.Tracer("github.com/mesa-labs/mesa/worker/order")

// Module registers order lifecycle worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewLifecycleHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewLifecycleHandler consumes order lifecycle events. Opened orders are
// announced for the kitchen display; closed orders are logged with their
// settled totals.
func NewLifecycleHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.LifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		span.SetAttributes(
			attribute.String("order.event", event.Event),
			attribute.Int64("order.id", event.OrderID),
		)

		switch event.Event {
		case ordersvc.EventOrderOpened:
			logger.Info("order opened; notifying kitchen",
				zap.Int64("order_id", event.OrderID),
				zap.Int64("table_id", event.TableID),
			)
		case ordersvc.EventOrderClosed:
			logger.Info("order closed",
				zap.Int64("order_id", event.OrderID),
				zap.Int64("table_id", event.TableID),
				zap.String("total_amount", event.TotalAmount),
			)
		default:
			logger.Warn("unknown order event", zap.String("event", event.Event))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
