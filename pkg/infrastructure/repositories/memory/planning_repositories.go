package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

var (
	_ repositories.SOHRepository        = (*SOHRepository)(nil)
	_ repositories.PackingRepository    = (*PackingRepository)(nil)
	_ repositories.FillingRepository    = (*FillingRepository)(nil)
	_ repositories.ProductionRepository = (*ProductionRepository)(nil)
)

// sortedByID returns the row IDs in ascending order
func sortedByID[T any](rows map[uint]T) []uint {
	ids := make([]uint, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SOHRepository provides in-memory stock-on-hand storage
type SOHRepository struct {
	data *dataset
}

func (r *SOHRepository) FindByID(_ context.Context, id uint) (*entities.StockOnHand, error) {
	soh, ok := r.data.soh[id]
	if !ok {
		return nil, fmt.Errorf("%w: stock on hand %d", entities.ErrNotFound, id)
	}
	return &soh, nil
}

func (r *SOHRepository) Find(_ context.Context, itemID entities.ItemID, week time.Time) (*entities.StockOnHand, error) {
	for _, id := range sortedByID(r.data.soh) {
		soh := r.data.soh[id]
		if soh.ItemID == itemID && soh.WeekCommencing.Equal(week) {
			return &soh, nil
		}
	}
	return nil, fmt.Errorf("%w: stock on hand for item %d week %s", entities.ErrNotFound, itemID, week.Format(time.DateOnly))
}

func (r *SOHRepository) Upsert(ctx context.Context, soh *entities.StockOnHand) error {
	if existing, err := r.Find(ctx, soh.ItemID, soh.WeekCommencing); err == nil {
		soh.ID = existing.ID
	} else if soh.ID == 0 {
		soh.ID = r.data.newID()
	}
	r.data.soh[soh.ID] = *soh
	return nil
}

func (r *SOHRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.data.soh[id]; !ok {
		return fmt.Errorf("%w: stock on hand %d", entities.ErrNotFound, id)
	}
	delete(r.data.soh, id)
	return nil
}

// PackingRepository provides in-memory packing storage
type PackingRepository struct {
	data *dataset
}

func samePackingKey(a, b entities.PackingKey) bool {
	return a.ItemID == b.ItemID &&
		a.MachineryID == b.MachineryID &&
		a.WeekCommencing.Equal(b.WeekCommencing) &&
		a.PackingDate.Equal(b.PackingDate)
}

func (r *PackingRepository) Find(_ context.Context, key entities.PackingKey) (*entities.Packing, error) {
	for _, id := range sortedByID(r.data.packing) {
		p := r.data.packing[id]
		if samePackingKey(p.Key(), key) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: packing for item %d on %s", entities.ErrNotFound, key.ItemID, key.PackingDate.Format(time.DateOnly))
}

func (r *PackingRepository) Create(ctx context.Context, p *entities.Packing) error {
	if _, err := r.Find(ctx, p.Key()); err == nil {
		return fmt.Errorf("%w: packing for item %d on %s", entities.ErrDuplicate, p.ItemID, p.PackingDate.Format(time.DateOnly))
	}
	p.ID = r.data.newID()
	r.data.packing[p.ID] = *p
	return nil
}

func (r *PackingRepository) Update(ctx context.Context, p *entities.Packing) error {
	if _, ok := r.data.packing[p.ID]; !ok {
		return fmt.Errorf("%w: packing %d", entities.ErrNotFound, p.ID)
	}
	if existing, err := r.Find(ctx, p.Key()); err == nil && existing.ID != p.ID {
		return fmt.Errorf("%w: packing for item %d on %s", entities.ErrDuplicate, p.ItemID, p.PackingDate.Format(time.DateOnly))
	}
	r.data.packing[p.ID] = *p
	return nil
}

func (r *PackingRepository) RequirementsByItem(_ context.Context, packingDate, week time.Time) ([]repositories.ItemRequirement, error) {
	totals := make(map[entities.ItemID]decimal.Decimal)
	for _, p := range r.data.packing {
		if !p.PackingDate.Equal(packingDate) || !p.WeekCommencing.Equal(week) || !p.RequirementKg.IsPositive() {
			continue
		}
		totals[p.ItemID] = totals[p.ItemID].Add(p.RequirementKg)
	}

	reqs := make([]repositories.ItemRequirement, 0, len(totals))
	for itemID, kg := range totals {
		reqs = append(reqs, repositories.ItemRequirement{ItemID: itemID, Kg: kg})
	}
	slices.SortFunc(reqs, func(a, b repositories.ItemRequirement) int { return cmp.Compare(a.ItemID, b.ItemID) })
	return reqs, nil
}

func (r *PackingRepository) ListByWeek(_ context.Context, week time.Time) ([]*entities.Packing, error) {
	var rows []*entities.Packing
	for _, id := range sortedByID(r.data.packing) {
		p := r.data.packing[id]
		if p.WeekCommencing.Equal(week) {
			rows = append(rows, &p)
		}
	}
	return rows, nil
}

// FillingRepository provides in-memory filling storage
type FillingRepository struct {
	data *dataset
}

func (r *FillingRepository) FindByID(_ context.Context, id uint) (*entities.Filling, error) {
	f, ok := r.data.filling[id]
	if !ok {
		return nil, fmt.Errorf("%w: filling %d", entities.ErrNotFound, id)
	}
	return &f, nil
}

func (r *FillingRepository) Create(_ context.Context, f *entities.Filling) error {
	f.ID = r.data.newID()
	r.data.filling[f.ID] = *f
	return nil
}

func (r *FillingRepository) Update(_ context.Context, f *entities.Filling) error {
	if _, ok := r.data.filling[f.ID]; !ok {
		return fmt.Errorf("%w: filling %d", entities.ErrNotFound, f.ID)
	}
	r.data.filling[f.ID] = *f
	return nil
}

func (r *FillingRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.data.filling[id]; !ok {
		return fmt.Errorf("%w: filling %d", entities.ErrNotFound, id)
	}
	delete(r.data.filling, id)
	return nil
}

func (r *FillingRepository) DeleteByDate(_ context.Context, day, week time.Time) (int64, error) {
	var deleted int64
	for id, f := range r.data.filling {
		if f.FillingDate.Equal(day) && f.WeekCommencing.Equal(week) {
			delete(r.data.filling, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *FillingRepository) ExistsInWeek(_ context.Context, itemID entities.ItemID, week time.Time) (bool, error) {
	for _, f := range r.data.filling {
		if f.ItemID == itemID && f.WeekCommencing.Equal(week) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FillingRepository) SumKgOnDate(_ context.Context, itemIDs []entities.ItemID, day time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, f := range r.data.filling {
		if f.FillingDate.Equal(day) && slices.Contains(itemIDs, f.ItemID) {
			total = total.Add(f.KiloPerSize)
		}
	}
	return total, nil
}

func (r *FillingRepository) ListByDate(_ context.Context, day, week time.Time) ([]*entities.Filling, error) {
	var rows []*entities.Filling
	for _, id := range sortedByID(r.data.filling) {
		f := r.data.filling[id]
		if f.FillingDate.Equal(day) && f.WeekCommencing.Equal(week) {
			rows = append(rows, &f)
		}
	}
	return rows, nil
}

// ProductionRepository provides in-memory production storage
type ProductionRepository struct {
	data *dataset
}

func (r *ProductionRepository) FindByID(_ context.Context, id uint) (*entities.Production, error) {
	p, ok := r.data.production[id]
	if !ok {
		return nil, fmt.Errorf("%w: production %d", entities.ErrNotFound, id)
	}
	return &p, nil
}

func (r *ProductionRepository) Find(_ context.Context, key entities.ProductionKey) (*entities.Production, error) {
	for _, id := range sortedByID(r.data.production) {
		p := r.data.production[id]
		if p.ItemID == key.ItemID && p.ProductionDate.Equal(key.ProductionDate) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: production for item %d on %s", entities.ErrNotFound, key.ItemID, key.ProductionDate.Format(time.DateOnly))
}

func (r *ProductionRepository) Create(ctx context.Context, p *entities.Production) error {
	if _, err := r.Find(ctx, p.Key()); err == nil {
		return fmt.Errorf("%w: production for item %d on %s", entities.ErrDuplicate, p.ItemID, p.ProductionDate.Format(time.DateOnly))
	}
	p.ID = r.data.newID()
	r.data.production[p.ID] = *p
	return nil
}

func (r *ProductionRepository) Update(ctx context.Context, p *entities.Production) error {
	if _, ok := r.data.production[p.ID]; !ok {
		return fmt.Errorf("%w: production %d", entities.ErrNotFound, p.ID)
	}
	if existing, err := r.Find(ctx, p.Key()); err == nil && existing.ID != p.ID {
		return fmt.Errorf("%w: production for item %d on %s", entities.ErrDuplicate, p.ItemID, p.ProductionDate.Format(time.DateOnly))
	}
	r.data.production[p.ID] = *p
	return nil
}

func (r *ProductionRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.data.production[id]; !ok {
		return fmt.Errorf("%w: production %d", entities.ErrNotFound, id)
	}
	delete(r.data.production, id)
	return nil
}

func (r *ProductionRepository) DeleteByDate(_ context.Context, day, week time.Time) (int64, error) {
	var deleted int64
	for id, p := range r.data.production {
		if p.ProductionDate.Equal(day) && p.WeekCommencing.Equal(week) {
			delete(r.data.production, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ProductionRepository) ExistsInWeek(_ context.Context, itemID entities.ItemID, week time.Time) (bool, error) {
	for _, p := range r.data.production {
		if p.ItemID == itemID && p.WeekCommencing.Equal(week) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductionRepository) ListByDate(_ context.Context, day, week time.Time) ([]*entities.Production, error) {
	var rows []*entities.Production
	for _, id := range sortedByID(r.data.production) {
		p := r.data.production[id]
		if p.ProductionDate.Equal(day) && p.WeekCommencing.Equal(week) {
			rows = append(rows, &p)
		}
	}
	return rows, nil
}
