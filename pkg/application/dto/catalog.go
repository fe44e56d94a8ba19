package dto

import "github.com/shopspring/decimal"

// ItemRow is one line of an item catalog file. FG links are given by code.
type ItemRow struct {
	Code              string
	Description       string
	Type              string
	WIPCode           string
	WIPFCode          string
	CalculationFactor decimal.Decimal
	KgPerUnit         decimal.Decimal
	AvgWeightPerUnit  decimal.Decimal
	UnitsPerBag       int
	MinLevel          decimal.Decimal
	MaxLevel          decimal.Decimal
}

// RecipeRow is one line of a recipe file
type RecipeRow struct {
	ParentCode    string
	ComponentCode string
	QuantityKg    decimal.Decimal
}

// ImportReport summarises a catalog import
type ImportReport struct {
	ItemsCreated   int
	ItemsUpdated   int
	RecipesCreated int
	RecipesUpdated int
}
