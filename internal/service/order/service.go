package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/billing"
	"github.com/mesa-labs/mesa/internal/cache"
	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	"github.com/mesa-labs/mesa/internal/messaging"
	foodrepo "github.com/mesa-labs/mesa/internal/repository/food"
	repo "github.com/mesa-labs/mesa/internal/repository/order"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/mesa-labs/mesa/service/order")

// Store is the order persistence contract the service depends on. The bun
// repository satisfies it; tests substitute an in-memory fake.
type Store interface {
	GetWithItems(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	Open(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error
	AppendItems(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error
	Close(ctx context.Context, order *entity.Order, merged []*entity.OrderItem, removedIDs []int64) error
}

// MenuStore resolves menu items for price snapshotting.
type MenuStore interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Food, error)
}

// Service owns the order lifecycle: open → add items → close.
type Service struct {
	store     Store
	menu      MenuStore
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	now       func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    *repo.Repository
	Foods     *foodrepo.Repository
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Orders,
		menu:      p.Foods,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Get retrieves an order by id, consulting cache when available. Read access
// is permitted for both staff roles.
func (s *Service) Get(ctx context.Context, principal auth.Principal, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if !principal.CanViewOrders() {
		return nil, errorbank.Unauthorized("order access requires waiter or cashier role")
	}

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
	}

	return order, nil
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context, principal auth.Principal) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if !principal.CanViewOrders() {
		return nil, errorbank.Unauthorized("order access requires waiter or cashier role")
	}

	orders, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Open creates an order for an available table, snapshotting current menu
// prices onto the new item rows. The whole effect is atomic: on any failure
// no order row exists and the table flag is untouched.
func (s *Service) Open(ctx context.Context, principal auth.Principal, req dto.OpenOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Open", trace.WithAttributes(attribute.Int64("table.id", req.TableID)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return nil, errorbank.Unauthorized("opening an order requires the waiter role")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	items, total, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.Order{
		TableID:     req.TableID,
		Status:      entity.OrderStatusOpen,
		Notes:       req.Notes,
		TotalAmount: total,
		OpenedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Open(ctx, order, items); err != nil {
		switch {
		case errors.Is(err, repo.ErrTableNotFound):
			return nil, errorbank.NotFound("table not found")
		case errors.Is(err, repo.ErrTableUnavailable):
			return nil, errorbank.InvalidState("table is not available")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to open order", errorbank.WithCause(err))
		}
	}

	s.logger.Info("order opened",
		zap.Int64("order_id", order.ID),
		zap.Int64("table_id", order.TableID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	s.invalidateCache(ctx, order.ID)
	s.publishEvent(ctx, EventOrderOpened, order)
	return s.reload(ctx, order)
}

// AddItems appends lines to an open order. Duplicate foods accumulate as
// separate rows; batches only collapse at close time.
func (s *Service) AddItems(ctx context.Context, principal auth.Principal, orderID int64, req dto.AddItemsRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.AddItems", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return nil, errorbank.Unauthorized("adding items requires the waiter role")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	order, err := s.load(ctx, span, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, errorbank.InvalidState("cannot add items to a closed order")
	}

	items, added, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order.TotalAmount = order.TotalAmount.Add(added)
	if err := s.store.AppendItems(ctx, order, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to add items", errorbank.WithCause(err))
	}

	s.logger.Info("items added to order",
		zap.Int64("order_id", order.ID),
		zap.Int("count", len(items)),
		zap.String("added", added.StringFixed(2)),
	)

	s.invalidateCache(ctx, order.ID)
	return s.reload(ctx, order)
}

// Close settles an open order: duplicate lines merge by food, the subtotal is
// recomputed from the merged rows, tax and service charge are fixed, and the
// table is released. A closed order rejects a second close.
func (s *Service) Close(ctx context.Context, principal auth.Principal, orderID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Close", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return nil, errorbank.Unauthorized("closing an order requires the waiter role")
	}

	order, err := s.load(ctx, span, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, errorbank.InvalidState("order is already closed")
	}

	merge := billing.MergeDuplicates(order.Items)
	totals := billing.Settle(billing.Subtotal(merge.Kept))

	closedAt := s.now()
	order.Status = entity.OrderStatusClosed
	order.ClosedAt = &closedAt
	order.TaxAmount = totals.Tax
	order.ServiceCharge = totals.ServiceCharge
	order.TotalAmount = totals.GrandTotal
	order.Items = merge.Kept

	if err := s.store.Close(ctx, order, merge.Kept, merge.RemovedIDs); err != nil {
		if errors.Is(err, repo.ErrAlreadyClosed) {
			return nil, errorbank.InvalidState("order is already closed")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to close order", errorbank.WithCause(err))
	}

	s.logger.Info("order closed",
		zap.Int64("order_id", order.ID),
		zap.Int64("table_id", order.TableID),
		zap.String("subtotal", totals.Subtotal.StringFixed(2)),
		zap.String("grand_total", totals.GrandTotal.StringFixed(2)),
	)

	s.invalidateCache(ctx, order.ID)
	s.publishEvent(ctx, EventOrderClosed, order)
	return s.reload(ctx, order)
}

// UpdateStatus drives the PATCH surface. "closed" performs the close
// transition; "open" on an already-open order echoes it back unchanged.
func (s *Service) UpdateStatus(ctx context.Context, principal auth.Principal, orderID int64, status string) (*entity.Order, error) {
	switch entity.OrderStatus(status) {
	case entity.OrderStatusClosed:
		return s.Close(ctx, principal, orderID)
	case entity.OrderStatusOpen:
		order, err := s.Get(ctx, principal, orderID)
		if err != nil {
			return nil, err
		}
		if !principal.CanMutateOrders() {
			return nil, errorbank.Unauthorized("updating an order requires the waiter role")
		}
		if !order.IsOpen() {
			return nil, errorbank.InvalidState("a closed order cannot be reopened")
		}
		return order, nil
	default:
		return nil, errorbank.InvalidState(fmt.Sprintf("unknown order status %q", status))
	}
}

// buildItems resolves the referenced foods and materializes item rows with
// price snapshots, returning the sum of the new subtotals.
func (s *Service) buildItems(ctx context.Context, inputs []dto.OrderItemInput) ([]*entity.OrderItem, decimal.Decimal, error) {
	ids := make([]int64, 0, len(inputs))
	for _, input := range inputs {
		ids = append(ids, input.FoodID)
	}

	foods, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, errorbank.Internal("failed to load menu items", errorbank.WithCause(err))
	}

	now := s.now()
	items := make([]*entity.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, input := range inputs {
		food, ok := foods[input.FoodID]
		if !ok {
			return nil, decimal.Zero, errorbank.NotFound(fmt.Sprintf("food %d not found", input.FoodID))
		}
		subtotal := billing.LineSubtotal(food.Price, input.Quantity)
		total = total.Add(subtotal)
		items = append(items, &entity.OrderItem{
			FoodID:              food.ID,
			Quantity:            input.Quantity,
			UnitPrice:           food.Price,
			Subtotal:            subtotal,
			SpecialInstructions: input.SpecialInstructions,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}
	return items, total, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, id int64) (*entity.Order, error) {
	order, err := s.store.GetWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// reload refreshes relations after a mutation so responses carry food names
// and the table row. A failed refresh falls back to the mutated entity.
func (s *Service) reload(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	fresh, err := s.store.GetWithItems(ctx, order.ID)
	if err != nil {
		s.logger.Warn("order reload failed", zap.Int64("id", order.ID), zap.Error(err))
		return order, nil
	}
	return fresh, nil
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	ttl := s.cacheTTL
	if !order.IsOpen() {
		// Closed orders are immutable; keep them around longer.
		ttl = s.cacheTTL * 4
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, ttl)
}

func (s *Service) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}
