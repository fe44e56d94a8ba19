package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

func fillingInput(code string, day string, kg string) FillingInput {
	return FillingInput{ItemCode: code, Date: fixtures.Day(day), Kg: fixtures.Dec(kg)}
}

func TestFillingService_CreateSumsProduction(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewFillingService(h.f.Store, h.publisher, zerolog.Nop())

	_, err := svc.Create(ctx, fillingInput("WIPF-SAUCE", "2025-01-06", "600"))
	require.NoError(t, err)
	p := h.production(t, "WIP-BASE", monday)
	assert.Equal(t, "600", p.TotalKg.String())
	assert.Equal(t, "2", p.Batches.String())
	assert.True(t, p.WeekCommencing.Equal(monday))

	_, err = svc.Create(ctx, fillingInput("WIPF-SAUCE", "2025-01-06", "300"))
	require.NoError(t, err)
	p = h.production(t, "WIP-BASE", monday)
	assert.Equal(t, "900", p.TotalKg.String())
	assert.Equal(t, "3", p.Batches.String())

	assert.Equal(t, []string{events.ProductionUpsertedEvent, events.ProductionUpsertedEvent}, h.eventTypes(t, monday))
}

func TestFillingService_UpdateMovesProduction(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewFillingService(h.f.Store, h.publisher, zerolog.Nop())

	first, err := svc.Create(ctx, fillingInput("WIPF-SAUCE", "2025-01-06", "600"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, fillingInput("WIPF-SAUCE", "2025-01-06", "300"))
	require.NoError(t, err)

	moved, err := svc.Update(ctx, first.ID, fillingInput("WIPF-SAUCE", "2025-01-07", "600"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, moved.ID)

	assert.Equal(t, "300", h.production(t, "WIP-BASE", monday).TotalKg.String())
	assert.Equal(t, "600", h.production(t, "WIP-BASE", tuesday).TotalKg.String())
}

func TestFillingService_DeleteRemovesEmptyProduction(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewFillingService(h.f.Store, h.publisher, zerolog.Nop())

	filling, err := svc.Create(ctx, fillingInput("WIPF-SAUCE", "2025-01-06", "600"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, filling.ID))

	_, err = h.f.Store.Production().Find(ctx, entities.ProductionKey{ProductionDate: monday, ItemID: h.f.ID("WIP-BASE")})
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	assert.Contains(t, h.eventTypes(t, monday), events.ProductionDeletedEvent)

	assert.True(t, errors.Is(svc.Delete(ctx, filling.ID), entities.ErrNotFound))
}

func TestFillingService_WIPParentProducesItself(t *testing.T) {
	f := fixtures.NewFixture()
	f.RM("RM-OIL")
	f.WIPF("WIPF-DRESSING")
	f.WIP("WIP-MIX")
	f.Recipe("WIPF-DRESSING", "RM-OIL", "1")
	f.Recipe("WIP-MIX", "WIPF-DRESSING", "1")

	ctx := context.Background()
	svc := NewFillingService(f.Store, nil, zerolog.Nop())
	_, err := svc.Create(ctx, fillingInput("WIPF-DRESSING", "2025-01-06", "150"))
	require.NoError(t, err)

	p, err := f.Store.Production().Find(ctx, entities.ProductionKey{ProductionDate: monday, ItemID: f.ID("WIP-MIX")})
	require.NoError(t, err)
	assert.Equal(t, "150", p.TotalKg.String())
	assert.Equal(t, "0.5", p.Batches.String())
}

func TestFillingService_RejectsNonFillingItem(t *testing.T) {
	h := newHarness()
	svc := NewFillingService(h.f.Store, h.publisher, zerolog.Nop())

	_, err := svc.Create(context.Background(), fillingInput("WIP-BASE", "2025-01-06", "10"))
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Create(context.Background(), fillingInput("WIPF-SAUCE", "2025-01-06", "-10"))
	assert.True(t, errors.Is(err, entities.ErrValidation))

	rows, err := h.f.Store.Filling().ListByDate(context.Background(), monday, monday)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
