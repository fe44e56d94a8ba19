package planning

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vsinha/bomplan/pkg/application/validation"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// ProductionService edits production rows by hand
type ProductionService struct {
	store     repositories.Store
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewProductionService creates a production service
func NewProductionService(store repositories.Store, publisher *events.Publisher, log zerolog.Logger) *ProductionService {
	return &ProductionService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "production_service").Logger(),
	}
}

// Create adds a production row; a row for the same item and date is a duplicate
func (s *ProductionService) Create(ctx context.Context, in ProductionInput) (*entities.Production, error) {
	var production *entities.Production
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := s.productionItem(ctx, tx, in)
		if err != nil {
			return err
		}
		if production, err = entities.NewProduction(item, in.Date, entities.WeekCommencing(in.Date), in.TotalKg); err != nil {
			return err
		}
		return tx.Production().Create(ctx, production)
	})
	if err != nil {
		return nil, err
	}
	s.published(production)
	return production, nil
}

// Update rewrites a production row, recomputing its batches
func (s *ProductionService) Update(ctx context.Context, id uint, in ProductionInput) (*entities.Production, error) {
	var production *entities.Production
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := s.productionItem(ctx, tx, in)
		if err != nil {
			return err
		}
		if _, err := tx.Production().FindByID(ctx, id); err != nil {
			return err
		}
		if production, err = entities.NewProduction(item, in.Date, entities.WeekCommencing(in.Date), in.TotalKg); err != nil {
			return err
		}
		production.ID = id
		return tx.Production().Update(ctx, production)
	})
	if err != nil {
		return nil, err
	}
	s.published(production)
	return production, nil
}

// Delete removes a production row
func (s *ProductionService) Delete(ctx context.Context, id uint) error {
	var production *entities.Production
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		if production, err = tx.Production().FindByID(ctx, id); err != nil {
			return err
		}
		return tx.Production().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(events.DayStream(production.ProductionDate), events.ProductionDeletedEvent, events.ProductionChanged{
		ProductionDate: production.ProductionDate,
		ItemID:         production.ItemID,
	})
	return nil
}

func (s *ProductionService) productionItem(ctx context.Context, tx repositories.Store, in ProductionInput) (*entities.Item, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	item, err := tx.Items().FindByCode(ctx, entities.ItemCode(in.ItemCode))
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", in.ItemCode, err)
	}
	if item.Type() != entities.WorkInProgressType {
		return nil, fmt.Errorf("%w: %s is %s, production needs a WIP item", entities.ErrValidation, item.Code, item.Type())
	}
	return item, nil
}

func (s *ProductionService) published(p *entities.Production) {
	s.log.Info().Str("item_code", string(p.ProductionCode)).Str("total_kg", p.TotalKg.String()).Msg("production saved")
	s.publisher.Publish(events.DayStream(p.ProductionDate), events.ProductionUpsertedEvent, events.ProductionChanged{
		ProductionDate: p.ProductionDate,
		ItemID:         p.ItemID,
		TotalKg:        p.TotalKg,
	})
}
