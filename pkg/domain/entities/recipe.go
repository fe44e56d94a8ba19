package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecipeLine is one component of a WIP or WIPF recipe
type RecipeLine struct {
	ID          uint
	ParentID    ItemID
	ComponentID ItemID
	// QuantityKg is kg of component per standard batch of the parent
	QuantityKg decimal.Decimal
}

// NewRecipeLine creates a validated RecipeLine
func NewRecipeLine(parentID, componentID ItemID, quantityKg decimal.Decimal) (*RecipeLine, error) {
	if parentID == 0 {
		return nil, fmt.Errorf("%w: recipe parent cannot be empty", ErrValidation)
	}
	if componentID == 0 {
		return nil, fmt.Errorf("%w: recipe component cannot be empty", ErrValidation)
	}
	if parentID == componentID {
		return nil, fmt.Errorf("%w: recipe parent and component cannot be the same: %d", ErrValidation, parentID)
	}
	if quantityKg.IsNegative() {
		return nil, fmt.Errorf("%w: quantity kg cannot be negative, got %s", ErrValidation, quantityKg)
	}

	return &RecipeLine{
		ParentID:    parentID,
		ComponentID: componentID,
		QuantityKg:  quantityKg,
	}, nil
}

// Key identifies the line within the recipe table
func (l RecipeLine) Key() string {
	return fmt.Sprintf("%d|%d", l.ParentID, l.ComponentID)
}
