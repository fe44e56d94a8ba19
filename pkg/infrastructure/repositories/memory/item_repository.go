package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

// ItemRepository provides in-memory item storage
type ItemRepository struct {
	data *dataset
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// LoadItems saves items in order, assigning IDs to new ones
func (r *ItemRepository) LoadItems(ctx context.Context, items []*entities.Item) error {
	for _, item := range items {
		if err := r.Save(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns the item with the given ID
func (r *ItemRepository) FindByID(_ context.Context, id entities.ItemID) (*entities.Item, error) {
	index, exists := r.data.itemIndex[id]
	if !exists {
		return nil, fmt.Errorf("%w: item %d", entities.ErrNotFound, id)
	}
	item := r.data.items[index]
	return &item, nil
}

// FindByCode returns the item with the given code
func (r *ItemRepository) FindByCode(_ context.Context, code entities.ItemCode) (*entities.Item, error) {
	index, exists := r.data.codeIndex[code]
	if !exists {
		return nil, fmt.Errorf("%w: item %s", entities.ErrNotFound, code)
	}
	item := r.data.items[index]
	return &item, nil
}

// FindByType returns all items of a type in insertion order
func (r *ItemRepository) FindByType(_ context.Context, itemType entities.ItemType) ([]*entities.Item, error) {
	var items []*entities.Item
	for i := range r.data.items {
		if r.data.items[i].Type() == itemType {
			item := r.data.items[i]
			items = append(items, &item)
		}
	}
	return items, nil
}

// Save inserts or replaces an item
func (r *ItemRepository) Save(_ context.Context, item *entities.Item) error {
	if index, taken := r.data.codeIndex[item.Code]; taken && r.data.items[index].ID != item.ID {
		return fmt.Errorf("%w: item code %s", entities.ErrDuplicate, item.Code)
	}

	if item.ID != 0 {
		if index, exists := r.data.itemIndex[item.ID]; exists {
			delete(r.data.codeIndex, r.data.items[index].Code)
			r.data.items[index] = *item
			r.data.codeIndex[item.Code] = index
			return nil
		}
		if uint(item.ID) > r.data.nextID {
			r.data.nextID = uint(item.ID)
		}
	} else {
		item.ID = entities.ItemID(r.data.newID())
	}

	r.data.itemIndex[item.ID] = len(r.data.items)
	r.data.codeIndex[item.Code] = len(r.data.items)
	r.data.items = append(r.data.items, *item)
	return nil
}
