package explosion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

// MaxDepth is the deepest recipe level walked below the starting item
const MaxDepth = 10

// frame is one pending node of the downstream walk
type frame struct {
	itemID entities.ItemID
	kg     decimal.Decimal
	level  int
}

// Aggregator walks recipes and totals downstream filling and production kg
type Aggregator struct {
	items   repositories.ItemRepository
	recipes repositories.RecipeRepository
	log     zerolog.Logger
}

// NewAggregator creates a new requirement aggregator
func NewAggregator(items repositories.ItemRepository, recipes repositories.RecipeRepository, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		items:   items,
		recipes: recipes,
		log:     log.With().Str("component", "aggregator").Logger(),
	}
}

// ExplodeDownstream passes requiredKg unchanged to every component of itemID.
// WIPF components are added to the filling totals and not expanded further.
// WIP components are added to the production totals and expanded with the
// same kg one level deeper. A node deeper than MaxDepth is logged, recorded
// in needs.Truncations and skipped.
func (a *Aggregator) ExplodeDownstream(ctx context.Context, itemID entities.ItemID, requiredKg decimal.Decimal, needs *Needs) error {
	stack := []frame{{itemID: itemID, kg: requiredKg, level: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.level > MaxDepth {
			a.log.Warn().
				Uint("item_id", uint(current.itemID)).
				Str("kg", current.kg.String()).
				Int("level", current.level).
				Msg("max recursion depth reached")
			needs.Truncations = append(needs.Truncations, Truncation{
				ItemID: current.itemID,
				Kg:     current.kg,
				Level:  current.level,
			})
			continue
		}

		lines, err := a.recipes.FindComponentsOf(ctx, current.itemID)
		if err != nil {
			return fmt.Errorf("failed to load recipe of item %d: %w", current.itemID, err)
		}

		// Pushed in reverse so components are expanded in recipe order
		for i := len(lines) - 1; i >= 0; i-- {
			needed := current.kg
			if !needed.IsPositive() {
				continue
			}

			component, err := a.items.FindByID(ctx, lines[i].ComponentID)
			if errors.Is(err, entities.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load component %d: %w", lines[i].ComponentID, err)
			}

			switch component.Type() {
			case entities.WorkInProgressFillingType:
				needs.addFilling(component.ID, needed)
				a.log.Debug().Str("item_code", string(component.Code)).Str("kg", needed.String()).Msg("WIPF requirement")
			case entities.WorkInProgressType:
				needs.addProduction(component.ID, needed)
				a.log.Debug().Str("item_code", string(component.Code)).Str("kg", needed.String()).Msg("WIP requirement")
				stack = append(stack, frame{itemID: component.ID, kg: needed, level: current.level + 1})
			}
		}
	}

	return nil
}

// CalculateComponentRequirements scales one level of itemID's recipe:
// every component needs quantity_kg x requiredKg.
func (a *Aggregator) CalculateComponentRequirements(ctx context.Context, itemID entities.ItemID, requiredKg decimal.Decimal) ([]dto.ComponentRequirement, error) {
	lines, err := a.recipes.FindComponentsOf(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe of item %d: %w", itemID, err)
	}

	reqs := make([]dto.ComponentRequirement, 0, len(lines))
	for _, line := range lines {
		component, err := a.items.FindByID(ctx, line.ComponentID)
		if errors.Is(err, entities.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load component %d: %w", line.ComponentID, err)
		}
		needed := line.QuantityKg.Mul(requiredKg)
		if !needed.IsPositive() {
			continue
		}
		reqs = append(reqs, dto.ComponentRequirement{
			ComponentID:   component.ID,
			ComponentCode: component.Code,
			Description:   component.Description,
			Type:          component.Type(),
			QuantityKg:    line.QuantityKg,
			RequiredKg:    needed,
		})
	}
	return reqs, nil
}
