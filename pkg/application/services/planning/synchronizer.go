package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/application/services/explosion"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// Synchronizer rebuilds the Filling and Production tables of a day from
// its Packing rows
type Synchronizer struct {
	store     repositories.Store
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewSynchronizer creates a new planning-table synchronizer
func NewSynchronizer(store repositories.Store, publisher *events.Publisher, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "synchronizer").Logger(),
	}
}

// ExplodeDay sums the day's packing requirements per item, explodes them
// through the recipes and replaces every Filling and Production row of the
// day. All writes happen in one transaction; on failure nothing changes and
// the returned result carries the failure message next to the error.
func (s *Synchronizer) ExplodeDay(ctx context.Context, packingDate, weekCommencing time.Time) (*dto.ExplosionResult, error) {
	day := entities.DateOf(packingDate)
	week := entities.DateOf(weekCommencing)
	runID := uuid.NewString()
	log := s.log.With().
		Str("run_id", runID).
		Str("packing_date", day.Format(time.DateOnly)).
		Str("week_commencing", week.Format(time.DateOnly)).
		Logger()

	log.Info().Msg("starting recipe explosion")

	var result *dto.ExplosionResult
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		result, err = s.explode(ctx, tx, runID, day, week, log)
		return err
	})
	if err != nil {
		failed := &dto.ExplosionResult{
			RunID:          runID,
			PackingDate:    day,
			WeekCommencing: week,
			Success:        false,
			Summary:        fmt.Sprintf("Recipe explosion failed: %v", err),
		}
		log.Error().Err(err).Msg("recipe explosion failed")
		s.publisher.Publish(events.DayStream(day), events.ExplosionFailedEvent, events.ExplosionCompleted{
			RunID: runID, Success: false, Summary: failed.Summary,
		})
		return failed, err
	}

	log.Info().Msg(result.Summary)
	stream := events.DayStream(day)
	s.publisher.Publish(stream, events.FillingReplacedEvent, events.RowsReplaced{
		RunID: runID, Deleted: result.FillingDeleted, Created: result.FillingCreated, TotalKg: result.TotalFillingKg,
	})
	s.publisher.Publish(stream, events.ProductionReplacedEvent, events.RowsReplaced{
		RunID: runID, Deleted: result.ProductionDeleted, Created: result.ProductionCreated, TotalKg: result.TotalProductionKg,
	})
	s.publisher.Publish(stream, events.ExplosionCompletedEvent, events.ExplosionCompleted{
		RunID: runID, Success: true, Summary: result.Summary,
	})
	return result, nil
}

func (s *Synchronizer) explode(
	ctx context.Context,
	tx repositories.Store,
	runID string,
	day, week time.Time,
	log zerolog.Logger,
) (*dto.ExplosionResult, error) {
	result := &dto.ExplosionResult{
		RunID:             runID,
		PackingDate:       day,
		WeekCommencing:    week,
		Success:           true,
		TotalPackingKg:    decimal.Zero,
		TotalFillingKg:    decimal.Zero,
		TotalProductionKg: decimal.Zero,
	}

	reqs, err := tx.Packing().RequirementsByItem(ctx, day, week)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate packing requirements: %w", err)
	}

	needs := explosion.NewNeeds()
	aggregator := explosion.NewAggregator(tx.Items(), tx.Recipes(), log)
	for _, req := range reqs {
		if !req.Kg.IsPositive() {
			continue
		}
		result.TotalPackingKg = result.TotalPackingKg.Add(req.Kg)
		log.Debug().Uint("item_id", uint(req.ItemID)).Str("kg", req.Kg.String()).Msg("exploding packing requirement")
		if err := aggregator.ExplodeDownstream(ctx, req.ItemID, req.Kg, needs); err != nil {
			return nil, err
		}
	}
	result.Truncated = len(needs.Truncations)

	if result.FillingDeleted, err = tx.Filling().DeleteByDate(ctx, day, week); err != nil {
		return nil, fmt.Errorf("failed to clear filling rows: %w", err)
	}
	for _, amount := range needs.FillingAmounts() {
		if !amount.Kg.IsPositive() {
			continue
		}
		filling, err := entities.NewFilling(amount.ItemID, day, amount.Kg)
		if err != nil {
			return nil, err
		}
		filling.WeekCommencing = week
		if err := tx.Filling().Create(ctx, filling); err != nil {
			return nil, fmt.Errorf("failed to create filling for item %d: %w", amount.ItemID, err)
		}
		result.FillingCreated++
		result.TotalFillingKg = result.TotalFillingKg.Add(amount.Kg)
	}

	if result.ProductionDeleted, err = tx.Production().DeleteByDate(ctx, day, week); err != nil {
		return nil, fmt.Errorf("failed to clear production rows: %w", err)
	}
	for _, amount := range needs.ProductionAmounts() {
		if !amount.Kg.IsPositive() {
			continue
		}
		item, err := tx.Items().FindByID(ctx, amount.ItemID)
		if errors.Is(err, entities.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load item %d: %w", amount.ItemID, err)
		}
		production, err := entities.NewProduction(item, day, week, amount.Kg)
		if err != nil {
			return nil, err
		}
		if err := tx.Production().Create(ctx, production); err != nil {
			return nil, fmt.Errorf("failed to create production for %s: %w", item.Code, err)
		}
		result.ProductionCreated++
		result.TotalProductionKg = result.TotalProductionKg.Add(amount.Kg)
	}

	if len(reqs) == 0 {
		result.Summary = "No packing requirements to process"
		return result, nil
	}
	result.Summary = fmt.Sprintf(
		"Recipe explosion completed: %d filling entries, %d production entries created. Total packing: %s kg, Total production: %s kg",
		result.FillingCreated, result.ProductionCreated, result.TotalPackingKg, result.TotalProductionKg,
	)
	return result, nil
}
