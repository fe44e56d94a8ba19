package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackingKey is the unique key of a packing row
type PackingKey struct {
	WeekCommencing time.Time
	ItemID         ItemID
	PackingDate    time.Time
	// MachineryID 0 means no machine assigned
	MachineryID uint
}

// PackingInputs are the values a packing row is derived from
type PackingInputs struct {
	SOHUnits         decimal.Decimal
	MinLevel         decimal.Decimal
	MaxLevel         decimal.Decimal
	UnitWeight       decimal.Decimal
	Factor           decimal.Decimal
	SpecialOrderKg   decimal.Decimal
	SpecialOrderUnit decimal.Decimal
}

// PackingFigures are the computed columns of a packing row
type PackingFigures struct {
	SOHUnits                decimal.Decimal
	SOHKg                   decimal.Decimal
	SOHRequirementUnitsWeek decimal.Decimal
	SOHRequirementKgWeek    decimal.Decimal
	TotalStockKg            decimal.Decimal
	TotalStockUnits         decimal.Decimal
	RequirementKg           decimal.Decimal
	RequirementUnit         decimal.Decimal
}

// ComputePacking derives the packing figures. Rounding is half-to-even, the
// weekly kg requirement truncates and stock units round up.
func ComputePacking(in PackingInputs) PackingFigures {
	f := PackingFigures{SOHUnits: in.SOHUnits}

	if in.SOHUnits.LessThan(in.MinLevel) {
		f.SOHRequirementUnitsWeek = in.MaxLevel.Sub(in.SOHUnits).Truncate(0)
	} else {
		f.SOHRequirementUnitsWeek = decimal.Zero
	}

	if in.UnitWeight.IsPositive() {
		f.SOHKg = in.SOHUnits.Mul(in.UnitWeight).RoundBank(0)
		f.SOHRequirementKgWeek = f.SOHRequirementUnitsWeek.Mul(in.UnitWeight).Truncate(0)
	} else {
		f.SOHKg = decimal.Zero
		f.SOHRequirementKgWeek = decimal.Zero
	}

	f.TotalStockKg = f.SOHRequirementKgWeek.Mul(in.Factor)
	if in.UnitWeight.IsPositive() {
		f.TotalStockUnits = f.TotalStockKg.Div(in.UnitWeight).Ceil()
	} else {
		f.TotalStockUnits = decimal.Zero
	}

	f.RequirementKg = decimal.Max(decimal.Zero,
		f.TotalStockKg.Sub(f.SOHKg).Add(in.SpecialOrderKg).RoundBank(0))
	f.RequirementUnit = decimal.Max(decimal.Zero,
		f.TotalStockUnits.Sub(in.SOHUnits).Add(in.SpecialOrderUnit))

	return f
}

// Packing is the weekly packing plan of one finished good
type Packing struct {
	ID                uint
	ItemID            ItemID
	PackingDate       time.Time
	WeekCommencing    time.Time
	MachineryID       uint
	UnitWeight        decimal.Decimal
	CalculationFactor decimal.Decimal
	SpecialOrderKg    decimal.Decimal
	SpecialOrderUnit  decimal.Decimal
	Priority          int
	PackingFigures
}

// Key returns the packing row's unique key
func (p *Packing) Key() PackingKey {
	return PackingKey{
		WeekCommencing: p.WeekCommencing,
		ItemID:         p.ItemID,
		PackingDate:    p.PackingDate,
		MachineryID:    p.MachineryID,
	}
}

// Recompute refreshes every derived column from the item and the stock units
func (p *Packing) Recompute(item *Item, sohUnits decimal.Decimal) {
	factor := decimal.NewFromInt(1)
	if fg, ok := item.FinishedGood(); ok {
		factor = fg.Factor()
	}
	p.UnitWeight = item.UnitWeight()
	p.CalculationFactor = factor
	p.PackingFigures = ComputePacking(PackingInputs{
		SOHUnits:         sohUnits,
		MinLevel:         item.MinLevel,
		MaxLevel:         item.MaxLevel,
		UnitWeight:       p.UnitWeight,
		Factor:           factor,
		SpecialOrderKg:   p.SpecialOrderKg,
		SpecialOrderUnit: p.SpecialOrderUnit,
	})
}
