package planning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/bomplan/pkg/application/validation"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// FillingService edits filling rows and keeps the production rows fed by
// them in step
type FillingService struct {
	store     repositories.Store
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewFillingService creates a filling service that keeps production in step
func NewFillingService(store repositories.Store, publisher *events.Publisher, log zerolog.Logger) *FillingService {
	return &FillingService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "filling_service").Logger(),
	}
}

// filledDay is a (WIPF item, date) pair whose production must be re-summed
type filledDay struct {
	itemID entities.ItemID
	day    time.Time
}

// Create adds a filling row and updates the production it feeds
func (s *FillingService) Create(ctx context.Context, in FillingInput) (*entities.Filling, error) {
	var filling *entities.Filling
	var changes []events.ProductionChanged
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := s.fillingItem(ctx, tx, in)
		if err != nil {
			return err
		}
		if filling, err = entities.NewFilling(item.ID, in.Date, in.Kg); err != nil {
			return err
		}
		if err := tx.Filling().Create(ctx, filling); err != nil {
			return fmt.Errorf("failed to create filling for %s: %w", item.Code, err)
		}
		changes, err = s.syncProduction(ctx, tx, filledDay{item.ID, filling.FillingDate})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(changes)
	return filling, nil
}

// Update changes a filling row. Production is re-summed for both the old
// and the new item and date.
func (s *FillingService) Update(ctx context.Context, id uint, in FillingInput) (*entities.Filling, error) {
	var filling *entities.Filling
	var changes []events.ProductionChanged
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := s.fillingItem(ctx, tx, in)
		if err != nil {
			return err
		}
		if filling, err = tx.Filling().FindByID(ctx, id); err != nil {
			return err
		}
		before := filledDay{filling.ItemID, filling.FillingDate}

		updated, err := entities.NewFilling(item.ID, in.Date, in.Kg)
		if err != nil {
			return err
		}
		updated.ID = filling.ID
		filling = updated
		if err := tx.Filling().Update(ctx, filling); err != nil {
			return fmt.Errorf("failed to update filling %d: %w", id, err)
		}

		after := filledDay{filling.ItemID, filling.FillingDate}
		if changes, err = s.syncProduction(ctx, tx, before); err != nil {
			return err
		}
		if after.itemID != before.itemID || !after.day.Equal(before.day) {
			more, err := s.syncProduction(ctx, tx, after)
			if err != nil {
				return err
			}
			changes = append(changes, more...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(changes)
	return filling, nil
}

// Delete removes a filling row and updates the production it fed
func (s *FillingService) Delete(ctx context.Context, id uint) error {
	var changes []events.ProductionChanged
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		filling, err := tx.Filling().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Filling().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete filling %d: %w", id, err)
		}
		changes, err = s.syncProduction(ctx, tx, filledDay{filling.ItemID, filling.FillingDate})
		return err
	})
	if err != nil {
		return err
	}
	s.publish(changes)
	return nil
}

func (s *FillingService) fillingItem(ctx context.Context, tx repositories.Store, in FillingInput) (*entities.Item, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	item, err := tx.Items().FindByCode(ctx, entities.ItemCode(in.ItemCode))
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", in.ItemCode, err)
	}
	if item.Type() != entities.WorkInProgressFillingType {
		return nil, fmt.Errorf("%w: %s is %s, filling needs a WIPF item", entities.ErrValidation, item.Code, item.Type())
	}
	return item, nil
}

// syncProduction re-sums the production fed by a WIPF item on one day.
// Every recipe parent of the item maps to a production item: a WIP parent
// is produced itself, a finished good through its WIP link. The production
// total is the day's filling kg across all WIPF components of the parents
// mapping to that production item. A zero total deletes the row.
func (s *FillingService) syncProduction(ctx context.Context, tx repositories.Store, fd filledDay) ([]events.ProductionChanged, error) {
	parents, err := tx.Recipes().FindParentsOf(ctx, fd.itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes using item %d: %w", fd.itemID, err)
	}

	targets := make(map[entities.ItemID][]entities.ItemID)
	var order []entities.ItemID
	for _, line := range parents {
		target, err := s.productionTarget(ctx, tx, line.ParentID)
		if err != nil {
			return nil, err
		}
		if target == 0 {
			continue
		}
		wipfs, err := s.wipfComponents(ctx, tx, line.ParentID)
		if err != nil {
			return nil, err
		}
		if _, seen := targets[target]; !seen {
			order = append(order, target)
		}
		for _, id := range wipfs {
			if !slices.Contains(targets[target], id) {
				targets[target] = append(targets[target], id)
			}
		}
	}

	var changes []events.ProductionChanged
	for _, target := range order {
		change, err := s.upsertProduction(ctx, tx, target, targets[target], fd.day)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// productionTarget returns the production item of a recipe parent, 0 when none
func (s *FillingService) productionTarget(ctx context.Context, tx repositories.Store, parentID entities.ItemID) (entities.ItemID, error) {
	parent, err := tx.Items().FindByID(ctx, parentID)
	if errors.Is(err, entities.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load item %d: %w", parentID, err)
	}
	switch kind := parent.Kind.(type) {
	case entities.WorkInProgress:
		return parent.ID, nil
	case entities.FinishedGood:
		return kind.WIP, nil
	default:
		return 0, nil
	}
}

func (s *FillingService) wipfComponents(ctx context.Context, tx repositories.Store, parentID entities.ItemID) ([]entities.ItemID, error) {
	lines, err := tx.Recipes().FindComponentsOf(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe of item %d: %w", parentID, err)
	}
	var ids []entities.ItemID
	for _, line := range lines {
		component, err := tx.Items().FindByID(ctx, line.ComponentID)
		if errors.Is(err, entities.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load component %d: %w", line.ComponentID, err)
		}
		if component.Type() == entities.WorkInProgressFillingType {
			ids = append(ids, component.ID)
		}
	}
	return ids, nil
}

func (s *FillingService) upsertProduction(
	ctx context.Context,
	tx repositories.Store,
	targetID entities.ItemID,
	wipfIDs []entities.ItemID,
	day time.Time,
) (events.ProductionChanged, error) {
	change := events.ProductionChanged{ProductionDate: day, ItemID: targetID}

	total, err := tx.Filling().SumKgOnDate(ctx, wipfIDs, day)
	if err != nil {
		return change, fmt.Errorf("failed to sum filling on %s: %w", day.Format(time.DateOnly), err)
	}
	change.TotalKg = total

	existing, err := tx.Production().Find(ctx, entities.ProductionKey{ProductionDate: day, ItemID: targetID})
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return change, err
	}

	if !total.IsPositive() {
		if existing != nil {
			if err := tx.Production().Delete(ctx, existing.ID); err != nil {
				return change, fmt.Errorf("failed to delete production %d: %w", existing.ID, err)
			}
		}
		return change, nil
	}

	target, err := tx.Items().FindByID(ctx, targetID)
	if err != nil {
		return change, fmt.Errorf("failed to load production item %d: %w", targetID, err)
	}

	if existing != nil {
		existing.SetTotal(total)
		existing.ProductionCode = target.Code
		existing.Description = target.Label()
		existing.WeekCommencing = entities.WeekCommencing(day)
		if err := tx.Production().Update(ctx, existing); err != nil {
			return change, fmt.Errorf("failed to update production %d: %w", existing.ID, err)
		}
		return change, nil
	}

	production, err := entities.NewProduction(target, day, entities.WeekCommencing(day), total)
	if err != nil {
		return change, err
	}
	if err := tx.Production().Create(ctx, production); err != nil {
		return change, fmt.Errorf("failed to create production for %s: %w", target.Code, err)
	}
	return change, nil
}

func (s *FillingService) publish(changes []events.ProductionChanged) {
	for _, c := range changes {
		eventType := events.ProductionUpsertedEvent
		if !c.TotalKg.IsPositive() {
			eventType = events.ProductionDeletedEvent
		}
		s.log.Info().
			Uint("item_id", uint(c.ItemID)).
			Str("production_date", c.ProductionDate.Format(time.DateOnly)).
			Str("total_kg", c.TotalKg.String()).
			Msg("production re-summed from filling")
		s.publisher.Publish(events.DayStream(c.ProductionDate), eventType, c)
	}
}
