package planning

import (
	"time"

	"github.com/shopspring/decimal"
)

// SOHInput is one stock-on-hand entry, typed in or read from an upload
type SOHInput struct {
	ItemCode       string          `validate:"required"`
	WeekCommencing time.Time       `validate:"required"`
	DispatchBoxes  decimal.Decimal `validate:"gte=0"`
	DispatchUnits  decimal.Decimal `validate:"gte=0"`
	PackingBoxes   decimal.Decimal `validate:"gte=0"`
	PackingUnits   decimal.Decimal `validate:"gte=0"`
}

// FillingInput is a manual filling entry
type FillingInput struct {
	ItemCode string          `validate:"required"`
	Date     time.Time       `validate:"required"`
	Kg       decimal.Decimal `validate:"gte=0"`
}

// ProductionInput is a manual production entry
type ProductionInput struct {
	ItemCode string          `validate:"required"`
	Date     time.Time       `validate:"required"`
	TotalKg  decimal.Decimal `validate:"gte=0"`
}

// SpecialOrderInput sets the special order of a packing row
type SpecialOrderInput struct {
	Kg    decimal.Decimal `validate:"gte=0"`
	Units decimal.Decimal `validate:"gte=0"`
}
