package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageRow is the use of one recipe component by one production row
type UsageRow struct {
	ProductionDate       time.Time       `db:"production_date"`
	ProductionCode       string          `db:"production_code"`
	Batches              decimal.Decimal `db:"batches"`
	ComponentCode        string          `db:"component_code"`
	ComponentDescription string          `db:"component_description"`
	ComponentType        string          `db:"component_type"`
	QuantityKg           decimal.Decimal `db:"quantity_kg"`
	UsageKg              decimal.Decimal `db:"-"`
}

// RawMaterialUsage is the kg of one raw material consumed in a week
type RawMaterialUsage struct {
	WeekCommencing time.Time
	Code           string
	Description    string
	UsageKg        decimal.Decimal
}
