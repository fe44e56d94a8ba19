package memory

import (
	"context"
	"maps"
	"slices"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

// dataset holds every table of the in-memory store
type dataset struct {
	nextID     uint
	items      []entities.Item
	itemIndex  map[entities.ItemID]int
	codeIndex  map[entities.ItemCode]int
	recipes    []entities.RecipeLine
	soh        map[uint]entities.StockOnHand
	packing    map[uint]entities.Packing
	filling    map[uint]entities.Filling
	production map[uint]entities.Production
}

func newDataset(expectedItems int) *dataset {
	return &dataset{
		items:      make([]entities.Item, 0, expectedItems),
		itemIndex:  make(map[entities.ItemID]int, expectedItems),
		codeIndex:  make(map[entities.ItemCode]int, expectedItems),
		soh:        make(map[uint]entities.StockOnHand),
		packing:    make(map[uint]entities.Packing),
		filling:    make(map[uint]entities.Filling),
		production: make(map[uint]entities.Production),
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		nextID:     d.nextID,
		items:      slices.Clone(d.items),
		itemIndex:  maps.Clone(d.itemIndex),
		codeIndex:  maps.Clone(d.codeIndex),
		recipes:    slices.Clone(d.recipes),
		soh:        maps.Clone(d.soh),
		packing:    maps.Clone(d.packing),
		filling:    maps.Clone(d.filling),
		production: maps.Clone(d.production),
	}
}

func (d *dataset) newID() uint {
	d.nextID++
	return d.nextID
}

// Store is an in-memory planning store. It is not safe for concurrent use.
type Store struct {
	data *dataset
}

// NewStore creates an empty in-memory store
func NewStore(expectedItems int) *Store {
	return &Store{data: newDataset(expectedItems)}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

func (s *Store) Items() repositories.ItemRepository          { return &ItemRepository{data: s.data} }
func (s *Store) Recipes() repositories.RecipeRepository      { return &RecipeRepository{data: s.data} }
func (s *Store) StockOnHand() repositories.SOHRepository     { return &SOHRepository{data: s.data} }
func (s *Store) Packing() repositories.PackingRepository     { return &PackingRepository{data: s.data} }
func (s *Store) Filling() repositories.FillingRepository     { return &FillingRepository{data: s.data} }
func (s *Store) Production() repositories.ProductionRepository {
	return &ProductionRepository{data: s.data}
}

// Transaction runs fn on a copy of the data and keeps the copy only when fn succeeds
func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.data.clone()
	if err := fn(&Store{data: working}); err != nil {
		return err
	}
	*s.data = *working
	return nil
}
