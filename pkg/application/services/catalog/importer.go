package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/domain/services"
)

// Service loads and checks the item catalog and recipe table
type Service struct {
	store     repositories.Store
	validator *services.RecipeValidator
	log       zerolog.Logger
}

// NewService creates a catalog service
func NewService(store repositories.Store, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		validator: services.NewRecipeValidator(),
		log:       log.With().Str("component", "catalog").Logger(),
	}
}

// Import upserts items and recipe lines by code in one transaction. Nothing is
// written when the resulting table has unknown items, duplicate lines or raw
// materials with recipes.
func (s *Service) Import(ctx context.Context, items []dto.ItemRow, recipes []dto.RecipeRow) (*dto.ImportReport, error) {
	report := &dto.ImportReport{}
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		saved := make(map[string]*entities.Item, len(items))
		for _, row := range items {
			item, created, err := s.saveItem(ctx, tx, row)
			if err != nil {
				return err
			}
			saved[row.Code] = item
			if created {
				report.ItemsCreated++
			} else {
				report.ItemsUpdated++
			}
		}

		for _, row := range items {
			if row.WIPCode == "" && row.WIPFCode == "" {
				continue
			}
			if err := s.linkFinishedGood(ctx, tx, saved[row.Code], row); err != nil {
				return err
			}
		}

		for _, row := range recipes {
			created, err := s.saveRecipe(ctx, tx, row)
			if err != nil {
				return err
			}
			if created {
				report.RecipesCreated++
			} else {
				report.RecipesUpdated++
			}
		}

		result, err := s.validate(ctx, tx)
		if err != nil {
			return err
		}
		if result.HasCycles {
			// cycles are cut at the explosion depth limit
			s.log.Warn().Int("cycles", len(result.CyclePaths)).Msg("recipe table contains cycles")
		}
		if len(result.Errors) > len(result.CyclePaths) {
			return entities.Invalidf("recipe table rejected: %s", strings.Join(result.Errors, "; "))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("items_created", report.ItemsCreated).
		Int("items_updated", report.ItemsUpdated).
		Int("recipes_created", report.RecipesCreated).
		Int("recipes_updated", report.RecipesUpdated).
		Msg("catalog imported")
	return report, nil
}

// Validate checks the stored recipe table for cycles, duplicates and lines
// pointing at unknown items
func (s *Service) Validate(ctx context.Context) (*services.ValidationResult, error) {
	return s.validate(ctx, s.store)
}

func (s *Service) validate(ctx context.Context, store repositories.Store) (*services.ValidationResult, error) {
	byID := make(map[entities.ItemID]*entities.Item)
	var all []*entities.Item
	for _, t := range []entities.ItemType{
		entities.RawMaterialType,
		entities.WorkInProgressType,
		entities.WorkInProgressFillingType,
		entities.FinishedGoodType,
	} {
		items, err := store.Items().FindByType(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s items: %w", t, err)
		}
		for _, item := range items {
			byID[item.ID] = item
		}
		all = append(all, items...)
	}

	lines, err := store.Recipes().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	values := make([]entities.RecipeLine, len(lines))
	for i, l := range lines {
		values[i] = *l
	}

	result := s.validator.Validate(values, byID)
	codes := s.validator.ValidateItemCodes(all)
	result.Errors = append(result.Errors, codes.Errors...)
	return result, nil
}

func (s *Service) saveItem(ctx context.Context, tx repositories.Store, row dto.ItemRow) (*entities.Item, bool, error) {
	itemType, err := entities.ParseItemType(row.Type)
	if err != nil {
		return nil, false, fmt.Errorf("item %s: %w", row.Code, err)
	}

	kind := entities.KindFor(itemType)
	if itemType == entities.FinishedGoodType {
		kind = entities.FinishedGood{CalculationFactor: row.CalculationFactor}
	}
	item, err := entities.NewItem(entities.ItemCode(row.Code), row.Description, kind)
	if err != nil {
		return nil, false, err
	}
	item.KgPerUnit = row.KgPerUnit
	item.AvgWeightPerUnit = row.AvgWeightPerUnit
	item.UnitsPerBag = row.UnitsPerBag
	item.MinLevel = row.MinLevel
	item.MaxLevel = row.MaxLevel

	existing, err := tx.Items().FindByCode(ctx, item.Code)
	switch {
	case err == nil:
		item.ID = existing.ID
	case !errors.Is(err, entities.ErrNotFound):
		return nil, false, err
	}

	if err := tx.Items().Save(ctx, item); err != nil {
		return nil, false, fmt.Errorf("failed to save item %s: %w", row.Code, err)
	}
	return item, existing == nil, nil
}

func (s *Service) linkFinishedGood(ctx context.Context, tx repositories.Store, item *entities.Item, row dto.ItemRow) error {
	fg, ok := item.FinishedGood()
	if !ok {
		return entities.Invalidf("item %s is %s and cannot link to WIP or WIPF items", item.Code, item.Type())
	}

	var err error
	if fg.WIP, err = s.linkTarget(ctx, tx, row.WIPCode, entities.WorkInProgressType); err != nil {
		return fmt.Errorf("finished good %s: %w", item.Code, err)
	}
	if fg.WIPF, err = s.linkTarget(ctx, tx, row.WIPFCode, entities.WorkInProgressFillingType); err != nil {
		return fmt.Errorf("finished good %s: %w", item.Code, err)
	}
	item.Kind = fg
	return tx.Items().Save(ctx, item)
}

func (s *Service) linkTarget(ctx context.Context, tx repositories.Store, code string, want entities.ItemType) (entities.ItemID, error) {
	if code == "" {
		return 0, nil
	}
	target, err := tx.Items().FindByCode(ctx, entities.ItemCode(code))
	if err != nil {
		return 0, err
	}
	if target.Type() != want {
		return 0, entities.Invalidf("linked item %s is %s, expected %s", code, target.Type(), want)
	}
	return target.ID, nil
}

func (s *Service) saveRecipe(ctx context.Context, tx repositories.Store, row dto.RecipeRow) (bool, error) {
	parent, err := tx.Items().FindByCode(ctx, entities.ItemCode(row.ParentCode))
	if err != nil {
		return false, fmt.Errorf("recipe parent: %w", err)
	}
	component, err := tx.Items().FindByCode(ctx, entities.ItemCode(row.ComponentCode))
	if err != nil {
		return false, fmt.Errorf("recipe component: %w", err)
	}
	line, err := entities.NewRecipeLine(parent.ID, component.ID, row.QuantityKg)
	if err != nil {
		return false, err
	}

	existing, err := tx.Recipes().FindComponentsOf(ctx, parent.ID)
	if err != nil {
		return false, err
	}
	for _, l := range existing {
		if l.ComponentID == component.ID {
			line.ID = l.ID
			break
		}
	}
	if err := tx.Recipes().Save(ctx, line); err != nil {
		return false, fmt.Errorf("failed to save recipe %s -> %s: %w", row.ParentCode, row.ComponentCode, err)
	}
	return line.ID != 0 && !containsLine(existing, line.ID), nil
}

func containsLine(lines []*entities.RecipeLine, id uint) bool {
	for _, l := range lines {
		if l.ID == id {
			return true
		}
	}
	return false
}
