package gormrepo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

var (
	_ repositories.SOHRepository        = (*SOHRepository)(nil)
	_ repositories.PackingRepository    = (*PackingRepository)(nil)
	_ repositories.FillingRepository    = (*FillingRepository)(nil)
	_ repositories.ProductionRepository = (*ProductionRepository)(nil)
)

func day(t time.Time) string { return t.Format(time.DateOnly) }

// SOHRepository reads and writes the soh table
type SOHRepository struct {
	db *gorm.DB
}

func (r *SOHRepository) FindByID(ctx context.Context, id uint) (*entities.StockOnHand, error) {
	var rec SOHRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, describe("stock on hand %d", id))
	}
	return rec.toEntity(), nil
}

func (r *SOHRepository) Find(ctx context.Context, itemID entities.ItemID, week time.Time) (*entities.StockOnHand, error) {
	var rec SOHRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND week_commencing = ?", uint(itemID), week).
		First(&rec).Error
	if err != nil {
		return nil, translateError(err, describe("stock on hand for item %d week %s", itemID, day(week)))
	}
	return rec.toEntity(), nil
}

func (r *SOHRepository) Upsert(ctx context.Context, soh *entities.StockOnHand) error {
	existing, err := r.Find(ctx, soh.ItemID, soh.WeekCommencing)
	switch {
	case err == nil:
		soh.ID = existing.ID
		rec := sohToRecord(soh)
		return updateRow(ctx, r.db, rec.ID, &rec, describe("stock on hand %d", rec.ID))
	case !isNotFound(err):
		return err
	}

	rec := sohToRecord(soh)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateError(err, describe("stock on hand for item %d", soh.ItemID))
	}
	soh.ID = rec.ID
	return nil
}

func (r *SOHRepository) Delete(ctx context.Context, id uint) error {
	return deleteRow[SOHRecord](ctx, r.db, id, describe("stock on hand %d", id))
}

// PackingRepository reads and writes the packings table
type PackingRepository struct {
	db *gorm.DB
}

func (r *PackingRepository) Find(ctx context.Context, key entities.PackingKey) (*entities.Packing, error) {
	var rec PackingRecord
	err := r.db.WithContext(ctx).
		Where("week_commencing = ? AND item_id = ? AND packing_date = ? AND machinery_id = ?",
			key.WeekCommencing, uint(key.ItemID), key.PackingDate, key.MachineryID).
		First(&rec).Error
	if err != nil {
		return nil, translateError(err, describe("packing for item %d on %s", key.ItemID, day(key.PackingDate)))
	}
	return rec.toEntity(), nil
}

func (r *PackingRepository) Create(ctx context.Context, p *entities.Packing) error {
	rec := packingToRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateError(err, describe("packing for item %d on %s", p.ItemID, day(p.PackingDate)))
	}
	p.ID = rec.ID
	return nil
}

func (r *PackingRepository) Update(ctx context.Context, p *entities.Packing) error {
	rec := packingToRecord(p)
	return updateRow(ctx, r.db, rec.ID, &rec, describe("packing %d", p.ID))
}

func (r *PackingRepository) RequirementsByItem(ctx context.Context, packingDate, week time.Time) ([]repositories.ItemRequirement, error) {
	var recs []PackingRecord
	err := r.db.WithContext(ctx).
		Select("item_id", "requirement_kg").
		Where("packing_date = ? AND week_commencing = ? AND requirement_kg > 0", packingDate, week).
		Order("item_id").
		Find(&recs).Error
	if err != nil {
		return nil, translateError(err, describe("packing requirements for %s", day(packingDate)))
	}

	var reqs []repositories.ItemRequirement
	for _, rec := range recs {
		if !rec.RequirementKg.IsPositive() {
			continue
		}
		id := entities.ItemID(rec.ItemID)
		if n := len(reqs); n > 0 && reqs[n-1].ItemID == id {
			reqs[n-1].Kg = reqs[n-1].Kg.Add(rec.RequirementKg)
			continue
		}
		reqs = append(reqs, repositories.ItemRequirement{ItemID: id, Kg: rec.RequirementKg})
	}
	return reqs, nil
}

func (r *PackingRepository) ListByWeek(ctx context.Context, week time.Time) ([]*entities.Packing, error) {
	var recs []PackingRecord
	if err := r.db.WithContext(ctx).Where("week_commencing = ?", week).Order("id").Find(&recs).Error; err != nil {
		return nil, translateError(err, describe("packing for week %s", day(week)))
	}
	rows := make([]*entities.Packing, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.toEntity())
	}
	return rows, nil
}

// FillingRepository reads and writes the fillings table
type FillingRepository struct {
	db *gorm.DB
}

func (r *FillingRepository) FindByID(ctx context.Context, id uint) (*entities.Filling, error) {
	var rec FillingRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, describe("filling %d", id))
	}
	return rec.toEntity(), nil
}

func (r *FillingRepository) Create(ctx context.Context, f *entities.Filling) error {
	rec := fillingToRecord(f)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateError(err, describe("filling for item %d", f.ItemID))
	}
	f.ID = rec.ID
	return nil
}

func (r *FillingRepository) Update(ctx context.Context, f *entities.Filling) error {
	rec := fillingToRecord(f)
	return updateRow(ctx, r.db, rec.ID, &rec, describe("filling %d", f.ID))
}

func (r *FillingRepository) Delete(ctx context.Context, id uint) error {
	return deleteRow[FillingRecord](ctx, r.db, id, describe("filling %d", id))
}

func (r *FillingRepository) DeleteByDate(ctx context.Context, date, week time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("filling_date = ? AND week_commencing = ?", date, week).
		Delete(&FillingRecord{})
	if res.Error != nil {
		return 0, translateError(res.Error, describe("fillings on %s", day(date)))
	}
	return res.RowsAffected, nil
}

func (r *FillingRepository) ExistsInWeek(ctx context.Context, itemID entities.ItemID, week time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FillingRecord{}).
		Where("item_id = ? AND week_commencing = ?", uint(itemID), week).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, describe("fillings of item %d", itemID))
	}
	return count > 0, nil
}

func (r *FillingRepository) SumKgOnDate(ctx context.Context, itemIDs []entities.ItemID, date time.Time) (decimal.Decimal, error) {
	if len(itemIDs) == 0 {
		return decimal.Zero, nil
	}
	ids := make([]uint, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = uint(id)
	}

	var recs []FillingRecord
	err := r.db.WithContext(ctx).
		Select("kilo_per_size").
		Where("filling_date = ? AND item_id IN ?", date, ids).
		Find(&recs).Error
	if err != nil {
		return decimal.Zero, translateError(err, describe("filling kg on %s", day(date)))
	}
	total := decimal.Zero
	for _, rec := range recs {
		total = total.Add(rec.KiloPerSize)
	}
	return total, nil
}

func (r *FillingRepository) ListByDate(ctx context.Context, date, week time.Time) ([]*entities.Filling, error) {
	var recs []FillingRecord
	err := r.db.WithContext(ctx).
		Where("filling_date = ? AND week_commencing = ?", date, week).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, translateError(err, describe("fillings on %s", day(date)))
	}
	rows := make([]*entities.Filling, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.toEntity())
	}
	return rows, nil
}

// ProductionRepository reads and writes the productions table
type ProductionRepository struct {
	db *gorm.DB
}

func (r *ProductionRepository) FindByID(ctx context.Context, id uint) (*entities.Production, error) {
	var rec ProductionRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, describe("production %d", id))
	}
	return rec.toEntity(), nil
}

func (r *ProductionRepository) Find(ctx context.Context, key entities.ProductionKey) (*entities.Production, error) {
	var rec ProductionRecord
	err := forUpdate(r.db.WithContext(ctx)).
		Where("production_date = ? AND item_id = ?", key.ProductionDate, uint(key.ItemID)).
		First(&rec).Error
	if err != nil {
		return nil, translateError(err, describe("production for item %d on %s", key.ItemID, day(key.ProductionDate)))
	}
	return rec.toEntity(), nil
}

func (r *ProductionRepository) Create(ctx context.Context, p *entities.Production) error {
	rec := productionToRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateError(err, describe("production for item %d on %s", p.ItemID, day(p.ProductionDate)))
	}
	p.ID = rec.ID
	return nil
}

func (r *ProductionRepository) Update(ctx context.Context, p *entities.Production) error {
	rec := productionToRecord(p)
	return updateRow(ctx, r.db, rec.ID, &rec, describe("production %d", p.ID))
}

func (r *ProductionRepository) Delete(ctx context.Context, id uint) error {
	return deleteRow[ProductionRecord](ctx, r.db, id, describe("production %d", id))
}

func (r *ProductionRepository) DeleteByDate(ctx context.Context, date, week time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("production_date = ? AND week_commencing = ?", date, week).
		Delete(&ProductionRecord{})
	if res.Error != nil {
		return 0, translateError(res.Error, describe("productions on %s", day(date)))
	}
	return res.RowsAffected, nil
}

func (r *ProductionRepository) ExistsInWeek(ctx context.Context, itemID entities.ItemID, week time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ProductionRecord{}).
		Where("item_id = ? AND week_commencing = ?", uint(itemID), week).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, describe("productions of item %d", itemID))
	}
	return count > 0, nil
}

func (r *ProductionRepository) ListByDate(ctx context.Context, date, week time.Time) ([]*entities.Production, error) {
	var recs []ProductionRecord
	err := r.db.WithContext(ctx).
		Where("production_date = ? AND week_commencing = ?", date, week).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, translateError(err, describe("productions on %s", day(date)))
	}
	rows := make([]*entities.Production, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.toEntity())
	}
	return rows, nil
}
