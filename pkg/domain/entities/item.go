package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemID is the storage identifier of an item. Zero means "no item".
type ItemID uint

// ItemCode represents a unique item code
type ItemCode string

// ItemType represents the stage of an item in the FG -> WIPF -> WIP -> RM chain
type ItemType int

const (
	RawMaterialType ItemType = iota
	WorkInProgressType
	WorkInProgressFillingType
	FinishedGoodType
)

// String method for ItemType enum
func (t ItemType) String() string {
	switch t {
	case RawMaterialType:
		return "RM"
	case WorkInProgressType:
		return "WIP"
	case WorkInProgressFillingType:
		return "WIPF"
	case FinishedGoodType:
		return "FG"
	default:
		return "Unknown"
	}
}

// ParseItemType converts a type name such as "WIPF" into an ItemType
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RM", "RAW MATERIAL":
		return RawMaterialType, nil
	case "WIP":
		return WorkInProgressType, nil
	case "WIPF":
		return WorkInProgressFillingType, nil
	case "FG", "FINISHED GOOD":
		return FinishedGoodType, nil
	default:
		return 0, fmt.Errorf("%w: unknown item type %q", ErrValidation, s)
	}
}

// ItemKind carries the type-specific part of an item. Only a FinishedGood
// can link to a WIP or WIPF item.
type ItemKind interface {
	Type() ItemType
}

type RawMaterial struct{}

type WorkInProgress struct{}

type WorkInProgressFilling struct{}

// FinishedGood links a sellable item to the intermediate items it is made from
type FinishedGood struct {
	WIP               ItemID
	WIPF              ItemID
	CalculationFactor decimal.Decimal
}

func (RawMaterial) Type() ItemType           { return RawMaterialType }
func (WorkInProgress) Type() ItemType        { return WorkInProgressType }
func (WorkInProgressFilling) Type() ItemType { return WorkInProgressFillingType }
func (FinishedGood) Type() ItemType          { return FinishedGoodType }

// Factor returns the calculation factor, 1.0 when unset
func (fg FinishedGood) Factor() decimal.Decimal {
	if fg.CalculationFactor.IsZero() {
		return decimal.NewFromInt(1)
	}
	return fg.CalculationFactor
}

// KindFor builds the empty kind for a type. FG links are filled in by the caller.
func KindFor(t ItemType) ItemKind {
	switch t {
	case WorkInProgressType:
		return WorkInProgress{}
	case WorkInProgressFillingType:
		return WorkInProgressFilling{}
	case FinishedGoodType:
		return FinishedGood{}
	default:
		return RawMaterial{}
	}
}

// Item represents an entry of the item catalog
type Item struct {
	ID               ItemID
	Code             ItemCode
	Description      string
	Kind             ItemKind
	KgPerUnit        decimal.Decimal
	AvgWeightPerUnit decimal.Decimal
	UnitsPerBag      int
	MinLevel         decimal.Decimal
	MaxLevel         decimal.Decimal
	Active           bool
}

// NewItem creates a validated, active Item
func NewItem(code ItemCode, description string, kind ItemKind) (*Item, error) {
	if strings.TrimSpace(string(code)) == "" {
		return nil, fmt.Errorf("%w: item code cannot be empty", ErrValidation)
	}
	if kind == nil {
		return nil, fmt.Errorf("%w: item %s has no type", ErrValidation, code)
	}
	return &Item{
		Code:        code,
		Description: description,
		Kind:        kind,
		Active:      true,
	}, nil
}

// Type returns the item's stage
func (i *Item) Type() ItemType {
	if i.Kind == nil {
		return RawMaterialType
	}
	return i.Kind.Type()
}

// FinishedGood returns the FG links when the item is a finished good
func (i *Item) FinishedGood() (FinishedGood, bool) {
	fg, ok := i.Kind.(FinishedGood)
	return fg, ok
}

// UnitWeight is the kg of one unit: kg per unit, falling back to the average weight
func (i *Item) UnitWeight() decimal.Decimal {
	if i.KgPerUnit.IsPositive() {
		return i.KgPerUnit
	}
	if i.AvgWeightPerUnit.IsPositive() {
		return i.AvgWeightPerUnit
	}
	return decimal.Zero
}

// BagSize returns units per bag, 1 when unset
func (i *Item) BagSize() int {
	if i.UnitsPerBag <= 0 {
		return 1
	}
	return i.UnitsPerBag
}

// Label is the "code - description" form used on planning rows
func (i *Item) Label() string {
	return fmt.Sprintf("%s - %s", i.Code, i.Description)
}
