package gormrepo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

type ItemRecord struct {
	ID                uint            `gorm:"primaryKey"`
	Code              string          `gorm:"size:64;not null;uniqueIndex:uq_items_code"`
	Description       string          `gorm:"size:255"`
	ItemType          string          `gorm:"size:8;not null;index"`
	WIPItemID         *uint           `gorm:"index"`
	WIPFItemID        *uint           `gorm:"index"`
	CalculationFactor decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	KgPerUnit         decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	AvgWeightPerUnit  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UnitsPerBag       int             `gorm:"not null"`
	MinLevel          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MaxLevel          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active            bool            `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ItemRecord) TableName() string { return "items" }

type RecipeRecord struct {
	ID          uint            `gorm:"primaryKey"`
	ParentID    uint            `gorm:"not null;uniqueIndex:uq_recipes_parent_component"`
	ComponentID uint            `gorm:"not null;uniqueIndex:uq_recipes_parent_component;index:idx_recipes_component"`
	QuantityKg  decimal.Decimal `gorm:"type:decimal(10,4);not null"`
}

func (RecipeRecord) TableName() string { return "recipes" }

type SOHRecord struct {
	ID             uint            `gorm:"primaryKey"`
	WeekCommencing time.Time       `gorm:"type:date;not null;uniqueIndex:uq_soh_week_item"`
	ItemID         uint            `gorm:"not null;uniqueIndex:uq_soh_week_item"`
	DispatchBoxes  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DispatchUnits  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PackingBoxes   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PackingUnits   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalBoxes     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalUnits     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UpdatedAt      time.Time
}

func (SOHRecord) TableName() string { return "soh" }

type PackingRecord struct {
	ID                      uint            `gorm:"primaryKey"`
	WeekCommencing          time.Time       `gorm:"type:date;not null;uniqueIndex:uq_packing_week_item_date_machinery"`
	ItemID                  uint            `gorm:"not null;uniqueIndex:uq_packing_week_item_date_machinery"`
	PackingDate             time.Time       `gorm:"type:date;not null;uniqueIndex:uq_packing_week_item_date_machinery;index"`
	MachineryID             uint            `gorm:"not null;uniqueIndex:uq_packing_week_item_date_machinery"`
	UnitWeight              decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CalculationFactor       decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	SpecialOrderKg          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SpecialOrderUnit        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Priority                int             `gorm:"not null"`
	SOHUnits                decimal.Decimal `gorm:"column:soh_units;type:decimal(12,2);not null"`
	SOHKg                   decimal.Decimal `gorm:"column:soh_kg;type:decimal(12,2);not null"`
	SOHRequirementUnitsWeek decimal.Decimal `gorm:"column:soh_requirement_units_week;type:decimal(12,2);not null"`
	SOHRequirementKgWeek    decimal.Decimal `gorm:"column:soh_requirement_kg_week;type:decimal(12,2);not null"`
	TotalStockKg            decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	TotalStockUnits         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RequirementKg           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RequirementUnit         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UpdatedAt               time.Time
}

func (PackingRecord) TableName() string { return "packings" }

type FillingRecord struct {
	ID             uint            `gorm:"primaryKey"`
	FillingDate    time.Time       `gorm:"type:date;not null;index:idx_fillings_date_week"`
	WeekCommencing time.Time       `gorm:"type:date;not null;index:idx_fillings_date_week"`
	ItemID         uint            `gorm:"not null;index"`
	KiloPerSize    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (FillingRecord) TableName() string { return "fillings" }

type ProductionRecord struct {
	ID             uint            `gorm:"primaryKey"`
	ProductionDate time.Time       `gorm:"type:date;not null;uniqueIndex:uq_productions_date_item"`
	ItemID         uint            `gorm:"not null;uniqueIndex:uq_productions_date_item"`
	WeekCommencing time.Time       `gorm:"type:date;not null;index"`
	ProductionCode string          `gorm:"size:64;not null"`
	Description    string          `gorm:"size:255"`
	TotalKg        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// scale matches decimal.DivisionPrecision so total_kg/300 is stored unrounded
	Batches        decimal.Decimal `gorm:"type:decimal(30,16);not null"`
}

func (ProductionRecord) TableName() string { return "productions" }

// AllRecords lists the models managed by Migrate
func AllRecords() []any {
	return []any{
		&ItemRecord{},
		&RecipeRecord{},
		&SOHRecord{},
		&PackingRecord{},
		&FillingRecord{},
		&ProductionRecord{},
	}
}

func optionalID(id entities.ItemID) *uint {
	if id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

func fromOptional(id *uint) entities.ItemID {
	if id == nil {
		return 0
	}
	return entities.ItemID(*id)
}

func itemToRecord(item *entities.Item) ItemRecord {
	rec := ItemRecord{
		ID:                uint(item.ID),
		Code:              string(item.Code),
		Description:       item.Description,
		ItemType:          item.Type().String(),
		CalculationFactor: decimal.NewFromInt(1),
		KgPerUnit:         item.KgPerUnit,
		AvgWeightPerUnit:  item.AvgWeightPerUnit,
		UnitsPerBag:       item.UnitsPerBag,
		MinLevel:          item.MinLevel,
		MaxLevel:          item.MaxLevel,
		Active:            item.Active,
	}
	if fg, ok := item.FinishedGood(); ok {
		rec.WIPItemID = optionalID(fg.WIP)
		rec.WIPFItemID = optionalID(fg.WIPF)
		rec.CalculationFactor = fg.Factor()
	}
	return rec
}

func (r ItemRecord) toEntity() (*entities.Item, error) {
	itemType, err := entities.ParseItemType(r.ItemType)
	if err != nil {
		return nil, err
	}
	kind := entities.KindFor(itemType)
	if itemType == entities.FinishedGoodType {
		kind = entities.FinishedGood{
			WIP:               fromOptional(r.WIPItemID),
			WIPF:              fromOptional(r.WIPFItemID),
			CalculationFactor: r.CalculationFactor,
		}
	}
	return &entities.Item{
		ID:               entities.ItemID(r.ID),
		Code:             entities.ItemCode(r.Code),
		Description:      r.Description,
		Kind:             kind,
		KgPerUnit:        r.KgPerUnit,
		AvgWeightPerUnit: r.AvgWeightPerUnit,
		UnitsPerBag:      r.UnitsPerBag,
		MinLevel:         r.MinLevel,
		MaxLevel:         r.MaxLevel,
		Active:           r.Active,
	}, nil
}

func recipeToRecord(l *entities.RecipeLine) RecipeRecord {
	return RecipeRecord{
		ID:          l.ID,
		ParentID:    uint(l.ParentID),
		ComponentID: uint(l.ComponentID),
		QuantityKg:  l.QuantityKg,
	}
}

func (r RecipeRecord) toEntity() *entities.RecipeLine {
	return &entities.RecipeLine{
		ID:          r.ID,
		ParentID:    entities.ItemID(r.ParentID),
		ComponentID: entities.ItemID(r.ComponentID),
		QuantityKg:  r.QuantityKg,
	}
}

func sohToRecord(s *entities.StockOnHand) SOHRecord {
	return SOHRecord{
		ID:             s.ID,
		WeekCommencing: s.WeekCommencing,
		ItemID:         uint(s.ItemID),
		DispatchBoxes:  s.DispatchBoxes,
		DispatchUnits:  s.DispatchUnits,
		PackingBoxes:   s.PackingBoxes,
		PackingUnits:   s.PackingUnits,
		TotalBoxes:     s.TotalBoxes,
		TotalUnits:     s.TotalUnits,
	}
}

func (r SOHRecord) toEntity() *entities.StockOnHand {
	return &entities.StockOnHand{
		ID:             r.ID,
		ItemID:         entities.ItemID(r.ItemID),
		WeekCommencing: entities.DateOf(r.WeekCommencing),
		DispatchBoxes:  r.DispatchBoxes,
		DispatchUnits:  r.DispatchUnits,
		PackingBoxes:   r.PackingBoxes,
		PackingUnits:   r.PackingUnits,
		TotalBoxes:     r.TotalBoxes,
		TotalUnits:     r.TotalUnits,
	}
}

func packingToRecord(p *entities.Packing) PackingRecord {
	return PackingRecord{
		ID:                      p.ID,
		WeekCommencing:          p.WeekCommencing,
		ItemID:                  uint(p.ItemID),
		PackingDate:             p.PackingDate,
		MachineryID:             p.MachineryID,
		UnitWeight:              p.UnitWeight,
		CalculationFactor:       p.CalculationFactor,
		SpecialOrderKg:          p.SpecialOrderKg,
		SpecialOrderUnit:        p.SpecialOrderUnit,
		Priority:                p.Priority,
		SOHUnits:                p.SOHUnits,
		SOHKg:                   p.SOHKg,
		SOHRequirementUnitsWeek: p.SOHRequirementUnitsWeek,
		SOHRequirementKgWeek:    p.SOHRequirementKgWeek,
		TotalStockKg:            p.TotalStockKg,
		TotalStockUnits:         p.TotalStockUnits,
		RequirementKg:           p.RequirementKg,
		RequirementUnit:         p.RequirementUnit,
	}
}

func (r PackingRecord) toEntity() *entities.Packing {
	return &entities.Packing{
		ID:                r.ID,
		ItemID:            entities.ItemID(r.ItemID),
		PackingDate:       entities.DateOf(r.PackingDate),
		WeekCommencing:    entities.DateOf(r.WeekCommencing),
		MachineryID:       r.MachineryID,
		UnitWeight:        r.UnitWeight,
		CalculationFactor: r.CalculationFactor,
		SpecialOrderKg:    r.SpecialOrderKg,
		SpecialOrderUnit:  r.SpecialOrderUnit,
		Priority:          r.Priority,
		PackingFigures: entities.PackingFigures{
			SOHUnits:                r.SOHUnits,
			SOHKg:                   r.SOHKg,
			SOHRequirementUnitsWeek: r.SOHRequirementUnitsWeek,
			SOHRequirementKgWeek:    r.SOHRequirementKgWeek,
			TotalStockKg:            r.TotalStockKg,
			TotalStockUnits:         r.TotalStockUnits,
			RequirementKg:           r.RequirementKg,
			RequirementUnit:         r.RequirementUnit,
		},
	}
}

func fillingToRecord(f *entities.Filling) FillingRecord {
	return FillingRecord{
		ID:             f.ID,
		FillingDate:    f.FillingDate,
		WeekCommencing: f.WeekCommencing,
		ItemID:         uint(f.ItemID),
		KiloPerSize:    f.KiloPerSize,
	}
}

func (r FillingRecord) toEntity() *entities.Filling {
	return &entities.Filling{
		ID:             r.ID,
		ItemID:         entities.ItemID(r.ItemID),
		FillingDate:    entities.DateOf(r.FillingDate),
		WeekCommencing: entities.DateOf(r.WeekCommencing),
		KiloPerSize:    r.KiloPerSize,
	}
}

func productionToRecord(p *entities.Production) ProductionRecord {
	return ProductionRecord{
		ID:             p.ID,
		ProductionDate: p.ProductionDate,
		ItemID:         uint(p.ItemID),
		WeekCommencing: p.WeekCommencing,
		ProductionCode: string(p.ProductionCode),
		Description:    p.Description,
		TotalKg:        p.TotalKg,
		Batches:        p.Batches,
	}
}

func (r ProductionRecord) toEntity() *entities.Production {
	return &entities.Production{
		ID:             r.ID,
		ItemID:         entities.ItemID(r.ItemID),
		ProductionCode: entities.ItemCode(r.ProductionCode),
		Description:    r.Description,
		ProductionDate: entities.DateOf(r.ProductionDate),
		WeekCommencing: entities.DateOf(r.WeekCommencing),
		TotalKg:        r.TotalKg,
		Batches:        r.Batches,
	}
}
