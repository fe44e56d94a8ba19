package repositories

import (
	"context"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// ItemRepository provides access to the item catalog
type ItemRepository interface {
	// FindByID and FindByCode return entities.ErrNotFound for unknown items
	FindByID(ctx context.Context, id entities.ItemID) (*entities.Item, error)
	FindByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error)
	FindByType(ctx context.Context, itemType entities.ItemType) ([]*entities.Item, error)
	// Save inserts the item when its ID is zero and assigns the new ID
	Save(ctx context.Context, item *entities.Item) error
}
