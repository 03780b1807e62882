package food

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/internal/entity"
	repo "github.com/mesa-labs/mesa/internal/repository/food"
	"github.com/mesa-labs/mesa/internal/storage"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/mesa-labs/mesa/service/food")

// Upload is an optional image attached to a create/update request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Service manages the menu catalog.
type Service struct {
	repo   *repo.Repository
	files  storage.Store
	logger *zap.Logger
}

// Module provides the food service to Fx.
var Module = fx.Provide(NewService)

// NewService wires a new menu Service.
func NewService(repository *repo.Repository, files storage.Store, logger *zap.Logger) *Service {
	return &Service{repo: repository, files: files, logger: logger}
}

// List returns the menu, food first then beverages, alphabetical within type.
func (s *Service) List(ctx context.Context, principal auth.Principal) ([]*entity.Food, error) {
	ctx, span := serviceTracer.Start(ctx, "FoodService.List")
	defer span.End()

	if !principal.CanViewOrders() {
		return nil, errorbank.Unauthorized("menu access requires waiter or cashier role")
	}

	foods, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list menu", errorbank.WithCause(err))
	}
	return foods, nil
}

// Get fetches one menu item.
func (s *Service) Get(ctx context.Context, principal auth.Principal, id int64) (*entity.Food, error) {
	ctx, span := serviceTracer.Start(ctx, "FoodService.Get", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	if !principal.CanViewOrders() {
		return nil, errorbank.Unauthorized("menu access requires waiter or cashier role")
	}
	return s.load(ctx, span, id)
}

// Create adds a menu item, storing the uploaded image first when present.
func (s *Service) Create(ctx context.Context, principal auth.Principal, req dto.CreateFoodRequest, upload *Upload) (*entity.Food, error) {
	ctx, span := serviceTracer.Start(ctx, "FoodService.Create", trace.WithAttributes(attribute.String("food.name", req.Name)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return nil, errorbank.Unauthorized("menu changes require the waiter role")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	food := &entity.Food{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Type:        entity.FoodType(req.Type),
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}

	if upload != nil {
		path, err := s.files.Save(ctx, upload.Filename, upload.Reader)
		if err != nil {
			return nil, errorbank.Internal("failed to store image", errorbank.WithCause(err))
		}
		food.Image = path
	}

	if err := s.repo.Create(ctx, food); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.removeImage(ctx, food.Image)
		return nil, errorbank.Internal("failed to create menu item", errorbank.WithCause(err))
	}

	s.logger.Info("menu item created", zap.Int64("id", food.ID), zap.String("name", food.Name))
	return food, nil
}

// Update patches a menu item. A new image replaces and deletes the old one.
func (s *Service) Update(ctx context.Context, principal auth.Principal, id int64, req dto.UpdateFoodRequest, upload *Upload) (*entity.Food, error) {
	ctx, span := serviceTracer.Start(ctx, "FoodService.Update", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return nil, errorbank.Unauthorized("menu changes require the waiter role")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	food, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		food.Name = *req.Name
	}
	if req.Description != nil {
		food.Description = *req.Description
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		food.Price = price
	}
	if req.Type != nil {
		food.Type = entity.FoodType(*req.Type)
	}
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}

	oldImage := ""
	if upload != nil {
		path, err := s.files.Save(ctx, upload.Filename, upload.Reader)
		if err != nil {
			return nil, errorbank.Internal("failed to store image", errorbank.WithCause(err))
		}
		oldImage = food.Image
		food.Image = path
	}

	if err := s.repo.Update(ctx, food); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("food not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update menu item", errorbank.WithCause(err))
	}

	s.removeImage(ctx, oldImage)
	return food, nil
}

// Delete soft-deletes a menu item and removes its stored image.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "FoodService.Delete", trace.WithAttributes(attribute.Int64("food.id", id)))
	defer span.End()

	if !principal.CanMutateOrders() {
		return errorbank.Unauthorized("menu changes require the waiter role")
	}

	food, err := s.load(ctx, span, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("food not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete menu item", errorbank.WithCause(err))
	}

	s.removeImage(ctx, food.Image)
	s.logger.Info("menu item deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) load(ctx context.Context, span trace.Span, id int64) (*entity.Food, error) {
	food, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("food not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load menu item", errorbank.WithCause(err))
	}
	return food, nil
}

func (s *Service) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil {
		s.logger.Warn("failed to delete stored image", zap.String("path", path), zap.Error(err))
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errorbank.Unprocessable("validation error",
			errorbank.WithFieldErrors(map[string]string{"price": "must be a decimal number"}))
	}
	if price.IsNegative() {
		return decimal.Zero, errorbank.Unprocessable("validation error",
			errorbank.WithFieldErrors(map[string]string{"price": "must be at least 0"}))
	}
	return price, nil
}
