package table

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/entity"
	repo "github.com/mesa-labs/mesa/internal/repository/table"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/mesa-labs/mesa/service/table")

// Service exposes the floor plan. It is read-only: availability flips happen
// exclusively inside order open/close transactions.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// Module provides the table service to Fx.
var Module = fx.Provide(NewService)

// NewService wires a new table Service.
func NewService(repository *repo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repository, logger: logger}
}

// List returns every table with its occupancy status. Guests may call this.
func (s *Service) List(ctx context.Context) ([]*entity.Table, error) {
	ctx, span := serviceTracer.Start(ctx, "TableService.List")
	defer span.End()

	tables, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list tables", errorbank.WithCause(err))
	}
	return tables, nil
}

// ListAvailable returns tables currently free for seating.
func (s *Service) ListAvailable(ctx context.Context) ([]*entity.Table, error) {
	ctx, span := serviceTracer.Start(ctx, "TableService.ListAvailable")
	defer span.End()

	tables, err := s.repo.ListAvailable(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list available tables", errorbank.WithCause(err))
	}
	return tables, nil
}

// Get fetches one table.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Table, error) {
	ctx, span := serviceTracer.Start(ctx, "TableService.Get", trace.WithAttributes(attribute.Int64("table.id", id)))
	defer span.End()

	table, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("table not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load table", errorbank.WithCause(err))
	}
	return table, nil
}
