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

// PackingService edits packing rows
type PackingService struct {
	store     repositories.Store
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewPackingService creates a packing service for special orders
func NewPackingService(store repositories.Store, publisher *events.Publisher, log zerolog.Logger) *PackingService {
	return &PackingService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "packing_service").Logger(),
	}
}

// SetSpecialOrder stores a special order on a packing row and recomputes it
func (s *PackingService) SetSpecialOrder(ctx context.Context, key entities.PackingKey, in SpecialOrderInput) (*entities.Packing, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var packing *entities.Packing
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		if packing, err = tx.Packing().Find(ctx, key); err != nil {
			return err
		}
		item, err := tx.Items().FindByID(ctx, packing.ItemID)
		if err != nil {
			return fmt.Errorf("failed to load item %d: %w", packing.ItemID, err)
		}
		packing.SpecialOrderKg = in.Kg
		packing.SpecialOrderUnit = in.Units
		packing.Recompute(item, packing.SOHUnits)
		return tx.Packing().Update(ctx, packing)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("item_id", uint(packing.ItemID)).Str("requirement_kg", packing.RequirementKg.String()).Msg("special order applied")
	s.publisher.Publish(events.DayStream(packing.PackingDate), events.PackingRecalculatedEvent,
		events.PackingRecalculated{Packing: *packing})
	return packing, nil
}
