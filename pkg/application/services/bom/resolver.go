package bom

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

// Resolver reads the FG -> WIPF -> WIP hierarchy of finished goods
type Resolver struct {
	items   repositories.ItemRepository
	recipes repositories.RecipeRepository
	log     zerolog.Logger
}

// NewResolver creates a new BOM resolver
func NewResolver(items repositories.ItemRepository, recipes repositories.RecipeRepository, log zerolog.Logger) *Resolver {
	return &Resolver{
		items:   items,
		recipes: recipes,
		log:     log.With().Str("component", "bom_resolver").Logger(),
	}
}

// Resolve returns the hierarchy of a finished good. An unknown code or an
// item that is not a finished good reports found=false without an error.
func (r *Resolver) Resolve(ctx context.Context, fgCode entities.ItemCode) (*entities.Hierarchy, bool, error) {
	item, err := r.items.FindByCode(ctx, fgCode)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load item %s: %w", fgCode, err)
	}
	return r.resolveItem(ctx, item)
}

// ResolveItem is Resolve for an already loaded item
func (r *Resolver) ResolveItem(ctx context.Context, item *entities.Item) (*entities.Hierarchy, bool, error) {
	return r.resolveItem(ctx, item)
}

func (r *Resolver) resolveItem(ctx context.Context, item *entities.Item) (*entities.Hierarchy, bool, error) {
	fg, ok := item.FinishedGood()
	if !ok {
		return nil, false, nil
	}

	h := &entities.Hierarchy{
		FG:                node(item),
		CalculationFactor: fg.Factor(),
	}

	var err error
	if h.WIPF, err = r.linked(ctx, item, fg.WIPF); err != nil {
		return nil, false, err
	}
	if h.WIP, err = r.linked(ctx, item, fg.WIP); err != nil {
		return nil, false, err
	}

	h.Flow = entities.ClassifyFlow(h.WIPF != nil, h.WIP != nil)
	return h, true, nil
}

// linked loads a linked item; a dangling link counts as absent
func (r *Resolver) linked(ctx context.Context, fg *entities.Item, id entities.ItemID) (*entities.HierarchyNode, error) {
	if id == 0 {
		return nil, nil
	}
	item, err := r.items.FindByID(ctx, id)
	if errors.Is(err, entities.ErrNotFound) {
		r.log.Warn().Str("item_code", string(fg.Code)).Uint("linked_id", uint(id)).Msg("finished good links to a missing item")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d linked from %s: %w", id, fg.Code, err)
	}
	n := node(item)
	return &n, nil
}

func node(item *entities.Item) entities.HierarchyNode {
	return entities.HierarchyNode{ID: item.ID, Code: item.Code, Description: item.Description}
}

// ResolveAll returns the hierarchy of every finished good
func (r *Resolver) ResolveAll(ctx context.Context) ([]*entities.Hierarchy, error) {
	fgs, err := r.items.FindByType(ctx, entities.FinishedGoodType)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished goods: %w", err)
	}

	hierarchies := make([]*entities.Hierarchy, 0, len(fgs))
	for _, fg := range fgs {
		h, found, err := r.resolveItem(ctx, fg)
		if err != nil {
			return nil, err
		}
		if found {
			hierarchies = append(hierarchies, h)
		}
	}
	return hierarchies, nil
}

// ExplosionSummary lists the hierarchy levels of a finished good: FG is
// level 1, WIPF level 2 and WIP level 3.
func (r *Resolver) ExplosionSummary(ctx context.Context, fgCode entities.ItemCode) (*dto.ExplosionSummary, error) {
	h, found, err := r.Resolve(ctx, fgCode)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: finished good %s", entities.ErrNotFound, fgCode)
	}

	summary := &dto.ExplosionSummary{
		FGCode:            h.FG.Code,
		Flow:              h.Flow,
		CalculationFactor: h.CalculationFactor,
		Levels: []dto.LevelSummary{
			{Level: 1, Type: entities.FinishedGoodType, Code: h.FG.Code, Description: h.FG.Description},
		},
	}
	if h.WIPF != nil {
		summary.Levels = append(summary.Levels, dto.LevelSummary{
			Level: 2, Type: entities.WorkInProgressFillingType, Code: h.WIPF.Code, Description: h.WIPF.Description,
		})
	}
	if h.WIP != nil {
		summary.Levels = append(summary.Levels, dto.LevelSummary{
			Level: 3, Type: entities.WorkInProgressType, Code: h.WIP.Code, Description: h.WIP.Description,
		})
	}
	return summary, nil
}

// DownstreamRequirements previews what quantity of a finished good needs
// from each stage. The quantity is first multiplied by the calculation
// factor and every stage receives the adjusted quantity; recipe lines are
// scaled by it.
func (r *Resolver) DownstreamRequirements(ctx context.Context, fgCode entities.ItemCode, quantity decimal.Decimal) (*dto.DownstreamPreview, error) {
	h, found, err := r.Resolve(ctx, fgCode)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: finished good %s", entities.ErrNotFound, fgCode)
	}

	adjusted := quantity.Mul(h.CalculationFactor)
	preview := &dto.DownstreamPreview{
		FGCode:            h.FG.Code,
		Quantity:          quantity,
		AdjustedQuantity:  adjusted,
		CalculationFactor: h.CalculationFactor,
		Flow:              h.Flow,
		Packing: dto.StageRequirement{
			ItemCode:      h.FG.Code,
			Description:   h.FG.Description,
			RequirementKg: adjusted,
		},
	}

	if h.WIPF != nil {
		if preview.Filling, err = r.stage(ctx, *h.WIPF, adjusted); err != nil {
			return nil, err
		}
	}
	if h.WIP != nil {
		if preview.Production, err = r.stage(ctx, *h.WIP, adjusted); err != nil {
			return nil, err
		}
	}
	return preview, nil
}

func (r *Resolver) stage(ctx context.Context, n entities.HierarchyNode, kg decimal.Decimal) (*dto.StageRequirement, error) {
	components, err := r.ScaledComponents(ctx, n.ID, kg)
	if err != nil {
		return nil, err
	}
	return &dto.StageRequirement{
		ItemCode:      n.Code,
		Description:   n.Description,
		RequirementKg: kg,
		Components:    components,
	}, nil
}

// ScaledComponents returns the recipe of itemID with every line's quantity
// multiplied by requiredKg. Components missing from the catalog are skipped.
func (r *Resolver) ScaledComponents(ctx context.Context, itemID entities.ItemID, requiredKg decimal.Decimal) ([]dto.ComponentRequirement, error) {
	lines, err := r.recipes.FindComponentsOf(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe of item %d: %w", itemID, err)
	}

	components := make([]dto.ComponentRequirement, 0, len(lines))
	for _, line := range lines {
		component, err := r.items.FindByID(ctx, line.ComponentID)
		if errors.Is(err, entities.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load component %d: %w", line.ComponentID, err)
		}
		components = append(components, dto.ComponentRequirement{
			ComponentID:   component.ID,
			ComponentCode: component.Code,
			Description:   component.Description,
			Type:          component.Type(),
			QuantityKg:    line.QuantityKg,
			RequiredKg:    line.QuantityKg.Mul(requiredKg),
		})
	}
	return components, nil
}

// RecipeSummary lists the recipe of an item with the batch total
func (r *Resolver) RecipeSummary(ctx context.Context, code entities.ItemCode) (*dto.RecipeSummary, error) {
	item, err := r.items.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", code, err)
	}

	components, err := r.ScaledComponents(ctx, item.ID, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}

	summary := &dto.RecipeSummary{
		Code:        item.Code,
		Description: item.Description,
		Type:        item.Type(),
		TotalKg:     decimal.Zero,
		Components:  components,
	}
	for _, c := range components {
		summary.TotalKg = summary.TotalKg.Add(c.QuantityKg)
	}
	return summary, nil
}
