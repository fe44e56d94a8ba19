package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// ExplosionResult contains the outcome of one daily recipe explosion
type ExplosionResult struct {
	RunID             string
	PackingDate       time.Time
	WeekCommencing    time.Time
	Success           bool
	Summary           string
	FillingDeleted    int64
	ProductionDeleted int64
	FillingCreated    int
	ProductionCreated int
	TotalPackingKg    decimal.Decimal
	TotalFillingKg    decimal.Decimal
	TotalProductionKg decimal.Decimal
	Truncated         int
}

// LevelSummary describes one level of a finished good's hierarchy
type LevelSummary struct {
	Level       int
	Type        entities.ItemType
	Code        entities.ItemCode
	Description string
}

// ExplosionSummary is the level-by-level view of a finished good
type ExplosionSummary struct {
	FGCode            entities.ItemCode
	Flow              entities.FlowType
	CalculationFactor decimal.Decimal
	Levels            []LevelSummary
}

// ComponentRequirement is one recipe line scaled to a required quantity
type ComponentRequirement struct {
	ComponentID   entities.ItemID
	ComponentCode entities.ItemCode
	Description   string
	Type          entities.ItemType
	QuantityKg    decimal.Decimal
	RequiredKg    decimal.Decimal
}

// StageRequirement is the requirement placed on one hierarchy stage
type StageRequirement struct {
	ItemCode      entities.ItemCode
	Description   string
	RequirementKg decimal.Decimal
	Components    []ComponentRequirement
}

// DownstreamPreview lists what a quantity of a finished good needs at each stage
type DownstreamPreview struct {
	FGCode            entities.ItemCode
	Quantity          decimal.Decimal
	AdjustedQuantity  decimal.Decimal
	CalculationFactor decimal.Decimal
	Flow              entities.FlowType
	Packing           StageRequirement
	Filling           *StageRequirement
	Production        *StageRequirement
}

// RecipeSummary lists the components of one item's recipe
type RecipeSummary struct {
	Code        entities.ItemCode
	Description string
	Type        entities.ItemType
	TotalKg     decimal.Decimal
	Components  []ComponentRequirement
}

// SOHResult reports what saving a stock snapshot changed
type SOHResult struct {
	StockOnHand       *entities.StockOnHand
	Packing           *entities.Packing
	Flow              entities.FlowType
	FillingCreated    bool
	ProductionCreated bool
	Message           string
}

// RowIssue records why an upload row was skipped
type RowIssue struct {
	Row    int
	Code   string
	Reason string
}

// UploadReport summarises a stock-on-hand upload
type UploadReport struct {
	UploadID     string
	RowsRead     int
	Processed    int
	Skipped      int
	Batches      int
	DownstreamOK int
	Issues       []RowIssue
}
