package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// SOHRepository stores weekly stock snapshots
type SOHRepository interface {
	FindByID(ctx context.Context, id uint) (*entities.StockOnHand, error)
	Find(ctx context.Context, itemID entities.ItemID, week time.Time) (*entities.StockOnHand, error)
	// Upsert writes the snapshot keyed by (item, week) and sets its ID
	Upsert(ctx context.Context, soh *entities.StockOnHand) error
	Delete(ctx context.Context, id uint) error
}

// ItemRequirement is a packing requirement summed for one item
type ItemRequirement struct {
	ItemID entities.ItemID
	Kg     decimal.Decimal
}

// PackingRepository stores packing rows
type PackingRepository interface {
	Find(ctx context.Context, key entities.PackingKey) (*entities.Packing, error)
	// Create returns entities.ErrDuplicate when the key is taken
	Create(ctx context.Context, p *entities.Packing) error
	Update(ctx context.Context, p *entities.Packing) error
	// RequirementsByItem sums positive requirement kg per item, ordered by item
	RequirementsByItem(ctx context.Context, packingDate, week time.Time) ([]ItemRequirement, error)
	ListByWeek(ctx context.Context, week time.Time) ([]*entities.Packing, error)
}

// FillingRepository stores filling rows
type FillingRepository interface {
	FindByID(ctx context.Context, id uint) (*entities.Filling, error)
	Create(ctx context.Context, f *entities.Filling) error
	Update(ctx context.Context, f *entities.Filling) error
	Delete(ctx context.Context, id uint) error
	DeleteByDate(ctx context.Context, day, week time.Time) (int64, error)
	ExistsInWeek(ctx context.Context, itemID entities.ItemID, week time.Time) (bool, error)
	// SumKgOnDate totals kilo_per_size of the given items filled on day
	SumKgOnDate(ctx context.Context, itemIDs []entities.ItemID, day time.Time) (decimal.Decimal, error)
	ListByDate(ctx context.Context, day, week time.Time) ([]*entities.Filling, error)
}

// ProductionRepository stores production rows keyed by (production date, item)
type ProductionRepository interface {
	FindByID(ctx context.Context, id uint) (*entities.Production, error)
	Find(ctx context.Context, key entities.ProductionKey) (*entities.Production, error)
	// Create returns entities.ErrDuplicate when the key is taken
	Create(ctx context.Context, p *entities.Production) error
	Update(ctx context.Context, p *entities.Production) error
	Delete(ctx context.Context, id uint) error
	DeleteByDate(ctx context.Context, day, week time.Time) (int64, error)
	ExistsInWeek(ctx context.Context, itemID entities.ItemID, week time.Time) (bool, error)
	ListByDate(ctx context.Context, day, week time.Time) ([]*entities.Production, error)
}

// Store groups the repositories of one unit of work
type Store interface {
	Items() ItemRepository
	Recipes() RecipeRepository
	StockOnHand() SOHRepository
	Packing() PackingRepository
	Filling() FillingRepository
	Production() ProductionRepository
	// Transaction runs fn against a transactional store. Returning an error
	// rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
