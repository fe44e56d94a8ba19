package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/application/services/bom"
	"github.com/vsinha/bomplan/pkg/application/validation"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// SOHService maintains stock-on-hand and the packing and downstream rows
// that follow from it
type SOHService struct {
	store     repositories.Store
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewSOHService creates a new stock-on-hand service
func NewSOHService(store repositories.Store, publisher *events.Publisher, log zerolog.Logger) *SOHService {
	return &SOHService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "soh_service").Logger(),
	}
}

// Save records a stock snapshot and brings its packing row and any missing
// downstream rows up to date in one transaction
func (s *SOHService) Save(ctx context.Context, in SOHInput) (*dto.SOHResult, error) {
	var result *dto.SOHResult
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		result, err = s.Apply(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.DayStream(result.Packing.PackingDate), events.PackingRecalculatedEvent,
		events.PackingRecalculated{Packing: *result.Packing})
	return result, nil
}

// Apply runs the stock -> packing -> downstream leg inside tx. Lookup and
// validation failures are returned before anything is written.
func (s *SOHService) Apply(ctx context.Context, tx repositories.Store, in SOHInput) (*dto.SOHResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	item, err := tx.Items().FindByCode(ctx, entities.ItemCode(in.ItemCode))
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", in.ItemCode, err)
	}

	soh, err := entities.NewStockOnHand(item, in.WeekCommencing, in.DispatchBoxes, in.DispatchUnits, in.PackingBoxes, in.PackingUnits)
	if err != nil {
		return nil, err
	}
	if err := tx.StockOnHand().Upsert(ctx, soh); err != nil {
		return nil, fmt.Errorf("failed to save stock on hand for %s: %w", item.Code, err)
	}

	packing, err := s.recalculatePacking(ctx, tx, item, soh)
	if err != nil {
		return nil, err
	}

	result := &dto.SOHResult{StockOnHand: soh, Packing: packing}
	log := s.log.With().
		Str("item_code", string(item.Code)).
		Str("week_commencing", soh.WeekCommencing.Format(time.DateOnly)).
		Logger()

	if !packing.RequirementKg.IsPositive() {
		result.Message = "Packing entry created"
		log.Debug().Msg("no downstream requirement")
		return result, nil
	}

	if err := s.createDownstream(ctx, tx, item, packing, result); err != nil {
		return nil, err
	}
	log.Info().
		Str("requirement_kg", packing.RequirementKg.String()).
		Bool("filling_created", result.FillingCreated).
		Bool("production_created", result.ProductionCreated).
		Msg(result.Message)
	return result, nil
}

// recalculatePacking upserts the packing row dated on the week commencing
func (s *SOHService) recalculatePacking(ctx context.Context, tx repositories.Store, item *entities.Item, soh *entities.StockOnHand) (*entities.Packing, error) {
	key := entities.PackingKey{
		WeekCommencing: soh.WeekCommencing,
		ItemID:         item.ID,
		PackingDate:    soh.WeekCommencing,
	}

	packing, err := tx.Packing().Find(ctx, key)
	switch {
	case errors.Is(err, entities.ErrNotFound):
		packing = &entities.Packing{
			ItemID:         item.ID,
			PackingDate:    key.PackingDate,
			WeekCommencing: key.WeekCommencing,
		}
		packing.Recompute(item, soh.TotalUnits)
		if err := tx.Packing().Create(ctx, packing); err != nil {
			return nil, fmt.Errorf("failed to create packing for %s: %w", item.Code, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load packing for %s: %w", item.Code, err)
	default:
		packing.Recompute(item, soh.TotalUnits)
		if err := tx.Packing().Update(ctx, packing); err != nil {
			return nil, fmt.Errorf("failed to update packing for %s: %w", item.Code, err)
		}
	}
	return packing, nil
}

// createDownstream adds the week's filling and production rows for the
// resolved hierarchy unless they already exist. Existing rows are left as is.
// Both rows carry the packing requirement scaled by the calculation factor,
// without recipe ratios.
func (s *SOHService) createDownstream(ctx context.Context, tx repositories.Store, item *entities.Item, packing *entities.Packing, result *dto.SOHResult) error {
	resolver := bom.NewResolver(tx.Items(), tx.Recipes(), s.log)
	h, found, err := resolver.ResolveItem(ctx, item)
	if err != nil {
		return err
	}
	if !found || h.Flow == entities.DirectProduction {
		result.Flow = entities.DirectProduction
		result.Message = "Packing created (direct production flow)"
		return nil
	}
	result.Flow = h.Flow

	var created []string

	week := packing.WeekCommencing
	kg := packing.RequirementKg.Mul(h.CalculationFactor)

	if h.WIPF != nil {
		exists, err := tx.Filling().ExistsInWeek(ctx, h.WIPF.ID, week)
		if err != nil {
			return fmt.Errorf("failed to check filling for %s: %w", h.WIPF.Code, err)
		}
		if !exists {
			filling, err := entities.NewFilling(h.WIPF.ID, week, kg)
			if err != nil {
				return err
			}
			if err := tx.Filling().Create(ctx, filling); err != nil {
				return fmt.Errorf("failed to create filling for %s: %w", h.WIPF.Code, err)
			}
			result.FillingCreated = true
			created = append(created, "Filling: "+string(h.WIPF.Code))
		}
	}

	if h.WIP != nil {
		exists, err := tx.Production().ExistsInWeek(ctx, h.WIP.ID, week)
		if err != nil {
			return fmt.Errorf("failed to check production for %s: %w", h.WIP.Code, err)
		}
		if !exists {
			wip, err := tx.Items().FindByID(ctx, h.WIP.ID)
			if err != nil {
				return fmt.Errorf("failed to load item %s: %w", h.WIP.Code, err)
			}
			production, err := entities.NewProduction(wip, week, week, kg)
			if err != nil {
				return err
			}
			if err := tx.Production().Create(ctx, production); err != nil {
				return fmt.Errorf("failed to create production for %s: %w", wip.Code, err)
			}
			result.ProductionCreated = true
			created = append(created, "Production: "+string(h.WIP.Code))
		}
	}

	if len(created) == 0 {
		result.Message = "Packing created (existing downstream entries found)"
		return nil
	}
	result.Message = "Packing created. Downstream entries: " + strings.Join(created, ", ")
	return nil
}

// Delete removes a stock snapshot. Packing and downstream rows are kept.
func (s *SOHService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.StockOnHand().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete stock on hand %d: %w", id, err)
		}
		return nil
	})
}
