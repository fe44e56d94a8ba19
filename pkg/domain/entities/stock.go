package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateOf strips the clock from t, keeping the calendar day in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekCommencing returns the Monday of the week containing t
func WeekCommencing(t time.Time) time.Time {
	day := DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// IsMonday reports whether t falls on a Monday
func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

// StockOnHand is a weekly stock snapshot of one finished good
type StockOnHand struct {
	ID             uint
	ItemID         ItemID
	WeekCommencing time.Time
	DispatchBoxes  decimal.Decimal
	DispatchUnits  decimal.Decimal
	PackingBoxes   decimal.Decimal
	PackingUnits   decimal.Decimal
	TotalBoxes     decimal.Decimal
	TotalUnits     decimal.Decimal
}

// NewStockOnHand creates a snapshot with its totals computed for the item
func NewStockOnHand(item *Item, week time.Time, dispatchBoxes, dispatchUnits, packingBoxes, packingUnits decimal.Decimal) (*StockOnHand, error) {
	if item == nil || item.ID == 0 {
		return nil, fmt.Errorf("%w: stock on hand needs a stored item", ErrValidation)
	}
	for _, v := range []decimal.Decimal{dispatchBoxes, dispatchUnits, packingBoxes, packingUnits} {
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: stock counts cannot be negative for %s", ErrValidation, item.Code)
		}
	}
	soh := &StockOnHand{
		ItemID:         item.ID,
		WeekCommencing: WeekCommencing(week),
		DispatchBoxes:  dispatchBoxes,
		DispatchUnits:  dispatchUnits,
		PackingBoxes:   packingBoxes,
		PackingUnits:   packingUnits,
	}
	soh.ComputeTotals(item.BagSize())
	return soh, nil
}

// ComputeTotals recalculates boxes and units. A box holds unitsPerBag units.
func (s *StockOnHand) ComputeTotals(unitsPerBag int) {
	boxes := s.DispatchBoxes.Add(s.PackingBoxes)
	s.TotalBoxes = boxes
	s.TotalUnits = boxes.Mul(decimal.NewFromInt(int64(unitsPerBag))).
		Add(s.DispatchUnits).
		Add(s.PackingUnits)
}
