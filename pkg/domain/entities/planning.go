package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StandardBatchKg is the kg of one production batch
const StandardBatchKg = 300

// BatchesFor converts a production total into standard batches
func BatchesFor(totalKg decimal.Decimal) decimal.Decimal {
	return totalKg.Div(decimal.NewFromInt(StandardBatchKg))
}

// Filling is the daily fill plan of one WIPF item
type Filling struct {
	ID             uint
	ItemID         ItemID
	FillingDate    time.Time
	WeekCommencing time.Time
	KiloPerSize    decimal.Decimal
}

// NewFilling creates a filling row dated on day, with its week derived from day
func NewFilling(itemID ItemID, day time.Time, kg decimal.Decimal) (*Filling, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: filling needs an item", ErrValidation)
	}
	if kg.IsNegative() {
		return nil, fmt.Errorf("%w: filling kg cannot be negative, got %s", ErrValidation, kg)
	}
	return &Filling{
		ItemID:         itemID,
		FillingDate:    DateOf(day),
		WeekCommencing: WeekCommencing(day),
		KiloPerSize:    kg,
	}, nil
}

// ProductionKey is the unique key of a production row
type ProductionKey struct {
	ProductionDate time.Time
	ItemID         ItemID
}

// Production is the daily production plan of one WIP item
type Production struct {
	ID             uint
	ItemID         ItemID
	ProductionCode ItemCode
	Description    string
	ProductionDate time.Time
	WeekCommencing time.Time
	TotalKg        decimal.Decimal
	Batches        decimal.Decimal
}

// NewProduction creates a production row for item with batches derived from totalKg
func NewProduction(item *Item, day, week time.Time, totalKg decimal.Decimal) (*Production, error) {
	if item == nil || item.ID == 0 {
		return nil, fmt.Errorf("%w: production needs a stored item", ErrValidation)
	}
	if totalKg.IsNegative() {
		return nil, fmt.Errorf("%w: production kg cannot be negative, got %s", ErrValidation, totalKg)
	}
	p := &Production{
		ItemID:         item.ID,
		ProductionCode: item.Code,
		Description:    item.Label(),
		ProductionDate: DateOf(day),
		WeekCommencing: DateOf(week),
	}
	p.SetTotal(totalKg)
	return p, nil
}

// SetTotal updates the kg and keeps batches in step
func (p *Production) SetTotal(totalKg decimal.Decimal) {
	p.TotalKg = totalKg
	p.Batches = BatchesFor(totalKg)
}

// Key returns the production row's unique key
func (p *Production) Key() ProductionKey {
	return ProductionKey{ProductionDate: p.ProductionDate, ItemID: p.ItemID}
}
