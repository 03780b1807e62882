package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesa-labs/mesa/internal/database"
	"github.com/mesa-labs/mesa/internal/entity"
)

var repoTracer = otel.Tracer("github.com/mesa-labs/mesa/repository/order")

var (
	// ErrNotFound is returned when an order is missing or soft-deleted.
	ErrNotFound = errors.New("order not found")
	// ErrTableNotFound is returned when the referenced table does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrTableUnavailable is returned when the table already has an open order.
	ErrTableUnavailable = errors.New("table is not available")
	// ErrAlreadyClosed is returned when a close races another close of the
	// same order.
	ErrAlreadyClosed = errors.New("order is already closed")
)

// Repository encapsulates read/write access for orders and their lines. The
// multi-row lifecycle transitions (open, append, close) each run inside one
// database transaction so the table flag and the order rows move together.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

func liveItems(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("deleted_at IS NULL").Order("id ASC")
}

// GetWithItems fetches an order with its table and live item rows.
func (r *Repository) GetWithItems(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetWithItems", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Table").
		Relation("Items", liveItems).
		Relation("Items.Food").
		Where("o.id = ?", id).
		Where("o.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns all live orders, newest first, with tables and items loaded.
func (r *Repository) List(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Relation("Table").
		Relation("Items", liveItems).
		Relation("Items.Food").
		Where("o.deleted_at IS NULL").
		Order("o.created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Open atomically claims the table and persists the new order with its
// initial items. The table row is locked for the duration of the transaction
// so two concurrent opens cannot both pass the availability check.
func (r *Repository) Open(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Open", trace.WithAttributes(attribute.Int64("table.id", order.TableID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		table := new(entity.Table)
		err := tx.NewSelect().Model(table).
			Where("id = ?", order.TableID).
			Where("deleted_at IS NULL").
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTableNotFound
		}
		if err != nil {
			return err
		}
		if !table.IsAvailable {
			return ErrTableUnavailable
		}

		now := time.Now().UTC()
		_, err = tx.NewUpdate().Model((*entity.Table)(nil)).
			Set("is_available = ?", false).
			Set("updated_at = ?", now).
			Where("id = ?", table.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return err
		}

		order.Items = items
		return nil
	})
	if err != nil && !errors.Is(err, ErrTableNotFound) && !errors.Is(err, ErrTableUnavailable) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
	}
	return err
}

// AppendItems inserts additional item rows and moves the running total, in
// one transaction. The caller has already verified the order is open and
// computed the new total.
func (r *Repository) AppendItems(ctx context.Context, order *entity.Order, items []*entity.OrderItem) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AppendItems", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.Int("items.count", len(items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range items {
			item.OrderID = order.ID
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err := tx.NewUpdate().Model((*entity.Order)(nil)).
			Set("total_amount = ?", order.TotalAmount).
			Set("updated_at = ?", now).
			Where("id = ?", order.ID).
			Where("deleted_at IS NULL").
			Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
	}
	return err
}

// Close persists the settled order: merged item rows are rewritten, absorbed
// duplicates are tombstoned, the order gets its final totals and timestamps,
// and the table is released, all in one transaction.
func (r *Repository) Close(ctx context.Context, order *entity.Order, merged []*entity.OrderItem, removedIDs []int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Close", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()

		for _, item := range merged {
			_, err := tx.NewUpdate().Model((*entity.OrderItem)(nil)).
				Set("quantity = ?", item.Quantity).
				Set("subtotal = ?", item.Subtotal).
				Set("updated_at = ?", now).
				Where("id = ?", item.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		if len(removedIDs) > 0 {
			_, err := tx.NewUpdate().Model((*entity.OrderItem)(nil)).
				Set("deleted_at = ?", now).
				Where("id IN (?)", bun.In(removedIDs)).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		// Guard on status so a concurrent close commits at most once.
		res, err := tx.NewUpdate().Model((*entity.Order)(nil)).
			Set("status = ?", order.Status).
			Set("total_amount = ?", order.TotalAmount).
			Set("tax_amount = ?", order.TaxAmount).
			Set("service_charge = ?", order.ServiceCharge).
			Set("closed_at = ?", order.ClosedAt).
			Set("updated_at = ?", now).
			Where("id = ?", order.ID).
			Where("status = ?", entity.OrderStatusOpen).
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyClosed
		}

		_, err = tx.NewUpdate().Model((*entity.Table)(nil)).
			Set("is_available = ?", true).
			Set("updated_at = ?", now).
			Where("id = ?", order.TableID).
			Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "close failed")
	}
	return err
}
