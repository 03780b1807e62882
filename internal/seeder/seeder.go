package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/database"
	"github.com/mesa-labs/mesa/internal/entity"
)

// Module exposes the seeder to Fx.
var Module = fx.Provide(New)

// Seeder loads the starter floor plan and menu for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All runs every seeder.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Tables(ctx); err != nil {
		return err
	}
	return s.Foods(ctx)
}

// Tables seeds the restaurant floor plan if the tables are missing.
func (s *Seeder) Tables(ctx context.Context) error {
	type seedTable struct {
		number      string
		capacity    int
		description string
	}

	samples := []seedTable{
		{"T1", 2, "Window side table for two"},
		{"T2", 4, "Center table for family"},
		{"T3", 6, "Large table for groups"},
		{"T4", 2, "Quiet corner table for two"},
		{"T5", 8, "Large group table with booth seating"},
		{"T6", 2, "Patio table for two"},
		{"T7", 4, "High-top table for four"},
		{"T8", 2, "Bar-side table for two"},
		{"T9", 4, "Near kitchen table for four"},
		{"T10", 6, "Family table near window"},
		{"T11", 2, "Cozy booth for two"},
		{"T12", 4, "Booth for four"},
		{"T13", 6, "Communal table for larger groups"},
		{"T14", 8, "Banquet table for parties"},
		{"T15", 10, "Private long table for events"},
	}

	now := time.Now().UTC()
	for _, sample := range samples {
		table := entity.Table{
			Number:      sample.number,
			Capacity:    sample.capacity,
			Description: sample.description,
			IsAvailable: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err := s.db.NewInsert().Model(&table).
			On("CONFLICT (number) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded tables", zap.Int("count", len(samples)))
	return nil
}

// Foods seeds the starter menu if the items are missing.
func (s *Seeder) Foods(ctx context.Context) error {
	type seedFood struct {
		name        string
		description string
		price       string
		kind        entity.FoodType
	}

	samples := []seedFood{
		{"Chicken Rice", "Fragrant rice served with tender chicken and special sauce", "12.99", entity.FoodTypeFood},
		{"Caesar Salad", "Fresh romaine lettuce with caesar dressing, croutons, and parmesan", "8.99", entity.FoodTypeFood},
		{"Chocolate Lava Cake", "Warm chocolate cake with a molten chocolate center", "6.99", entity.FoodTypeFood},
		{"Beef Burger", "Juicy beef patty with cheese, lettuce, tomato, and special sauce", "14.99", entity.FoodTypeFood},
		{"Mushroom Soup", "Creamy soup made with fresh mushrooms", "7.99", entity.FoodTypeFood},
		{"Iced Coffee", "Freshly brewed coffee served over ice", "4.99", entity.FoodTypeBeverage},
		{"Fresh Orange Juice", "Freshly squeezed orange juice", "5.99", entity.FoodTypeBeverage},
		{"Green Tea", "Premium Japanese green tea", "3.99", entity.FoodTypeBeverage},
		{"Coca Cola", "Classic Coca Cola soft drink", "2.99", entity.FoodTypeBeverage},
		{"Mango Smoothie", "Creamy smoothie made with fresh mangoes", "6.99", entity.FoodTypeBeverage},
		{"Mineral Water", "Refreshing mineral water", "1.99", entity.FoodTypeBeverage},
	}

	now := time.Now().UTC()
	for _, sample := range samples {
		price, err := decimal.NewFromString(sample.price)
		if err != nil {
			return err
		}
		food := entity.Food{
			Name:        sample.name,
			Description: sample.description,
			Price:       price,
			Type:        sample.kind,
			IsAvailable: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.db.NewInsert().Model(&food).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded foods", zap.Int("count", len(samples)))
	return nil
}
