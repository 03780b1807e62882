package food

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

var repoTracer = otel.Tracer("github.com/mesa-labs/mesa/repository/food")

// ErrNotFound is returned when a menu item is missing or soft-deleted.
var ErrNotFound = errors.New("food not found")

// Repository encapsulates read/write access for menu items.
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

// List returns all live menu items grouped by type then name, matching the
// menu ordering shown to staff.
func (r *Repository) List(ctx context.Context) ([]*entity.Food, error) {
	ctx, span := repoTracer.Start(ctx, "FoodRepository.List")
	defer span.End()

	var foods []*entity.Food
	err := r.reader.NewSelect().Model(&foods).
		Where("deleted_at IS NULL").
		Order("type ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return foods, nil
}

// GetByID fetches one menu item by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Food, error) {
	ctx, span := repoTracer.Start(ctx, "FoodRepository.GetByID", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	food := new(entity.Food)
	err := r.reader.NewSelect().Model(food).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
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
	return food, nil
}

// GetByIDs fetches menu items for a set of ids, keyed by id. Missing ids are
// simply absent from the result; callers decide whether that is an error.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Food, error) {
	ctx, span := repoTracer.Start(ctx, "FoodRepository.GetByIDs", trace.WithAttributes(attribute.Int("food.count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return map[int64]*entity.Food{}, nil
	}

	var foods []*entity.Food
	err := r.reader.NewSelect().Model(&foods).
		Where("id IN (?)", bun.In(ids)).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	byID := make(map[int64]*entity.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}
	return byID, nil
}

// Create persists a new menu item.
func (r *Repository) Create(ctx context.Context, food *entity.Food) error {
	if food == nil {
		return errors.New("nil food")
	}
	ctx, span := repoTracer.Start(ctx, "FoodRepository.Create", trace.WithAttributes(attribute.String("food.name", food.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(food).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Update rewrites a menu item in place.
func (r *Repository) Update(ctx context.Context, food *entity.Food) error {
	if food == nil {
		return errors.New("nil food")
	}
	ctx, span := repoTracer.Start(ctx, "FoodRepository.Update", trace.WithAttributes(attribute.Int64("food.id", food.ID)))
	defer span.End()

	food.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(food).
		WherePK().
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a menu item so past order lines keep their reference.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "FoodRepository.Delete", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	now := time.Now().UTC()
	res, err := r.writer.NewUpdate().Model((*entity.Food)(nil)).
		Set("deleted_at = ?", now).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
