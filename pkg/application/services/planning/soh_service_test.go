package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

func sohInput(code, dispatchBoxes string) SOHInput {
	return SOHInput{
		ItemCode:       code,
		WeekCommencing: wednesday,
		DispatchBoxes:  fixtures.Dec(dispatchBoxes),
	}
}

func TestSOHService_SaveCreatesDownstream(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewSOHService(h.f.Store, h.publisher, zerolog.Nop())

	result, err := svc.Save(ctx, sohInput("FG-COMPLEX", "5"))
	require.NoError(t, err)

	assert.True(t, result.StockOnHand.WeekCommencing.Equal(monday))
	assert.Equal(t, "50", result.StockOnHand.TotalUnits.String())
	assert.True(t, result.Packing.PackingDate.Equal(monday))
	assert.Equal(t, "800", result.Packing.RequirementKg.String())
	assert.Equal(t, "400", result.Packing.RequirementUnit.String())
	assert.Equal(t, entities.ComplexFlow, result.Flow)
	assert.True(t, result.FillingCreated)
	assert.True(t, result.ProductionCreated)
	assert.Equal(t, "Packing created. Downstream entries: Filling: WIPF-SAUCE, Production: WIP-BASE", result.Message)

	fillings, err := h.f.Store.Filling().ListByDate(ctx, monday, monday)
	require.NoError(t, err)
	require.Len(t, fillings, 1)
	assert.Equal(t, "800", fillings[0].KiloPerSize.String())

	p := h.production(t, "WIP-BASE", monday)
	assert.Equal(t, "800", p.TotalKg.String())
	assert.True(t, p.Batches.Equal(entities.BatchesFor(decimal.NewFromInt(800))))

	assert.Equal(t, []string{events.PackingRecalculatedEvent}, h.eventTypes(t, monday))
}

func TestSOHService_DownstreamAppliesCalculationFactor(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.f.FG("FG-DOUBLE", fixtures.FGOptions{
		WIP: "WIP-BASE", WIPF: "WIPF-SAUCE", Factor: "2",
		KgPerUnit: "2", UnitsPerBag: 10, MinLevel: "100", MaxLevel: "500",
	})
	h.f.Recipe("FG-DOUBLE", "WIPF-SAUCE", "1")

	result, err := NewSOHService(h.f.Store, h.publisher, zerolog.Nop()).Save(ctx, sohInput("FG-DOUBLE", "5"))
	require.NoError(t, err)

	// 450 units x 2 kg x factor 2 less 100 kg on hand
	assert.Equal(t, "1800", result.Packing.TotalStockKg.String())
	assert.Equal(t, "1700", result.Packing.RequirementKg.String())

	fillings, err := h.f.Store.Filling().ListByDate(ctx, monday, monday)
	require.NoError(t, err)
	require.Len(t, fillings, 1)
	assert.Equal(t, "3400", fillings[0].KiloPerSize.String())

	p := h.production(t, "WIP-BASE", monday)
	assert.Equal(t, "3400", p.TotalKg.String())
	assert.True(t, p.Batches.Equal(entities.BatchesFor(decimal.NewFromInt(3400))))
}

func TestSOHService_SaveAgainUpdatesPackingOnly(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewSOHService(h.f.Store, h.publisher, zerolog.Nop())

	_, err := svc.Save(ctx, sohInput("FG-COMPLEX", "5"))
	require.NoError(t, err)
	result, err := svc.Save(ctx, sohInput("FG-COMPLEX", "6"))
	require.NoError(t, err)

	// 440 units x 2 kg less 120 kg on hand
	assert.Equal(t, "760", result.Packing.RequirementKg.String())
	assert.False(t, result.FillingCreated)
	assert.False(t, result.ProductionCreated)
	assert.Equal(t, "Packing created (existing downstream entries found)", result.Message)

	rows, err := h.f.Store.Packing().ListByWeek(ctx, monday)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.Equal(t, "800", h.production(t, "WIP-BASE", monday).TotalKg.String())
}

func TestSOHService_Messages(t *testing.T) {
	testCases := []struct {
		name  string
		code  string
		boxes string
		want  string
		flow  entities.FlowType
	}{
		{"stock above minimum", "FG-COMPLEX", "20", "Packing entry created", entities.DirectProduction},
		{"no links", "FG-DIRECT", "0", "Packing created (direct production flow)", entities.DirectProduction},
		{"filling only", "FG-FILL", "0", "Packing created. Downstream entries: Filling: WIPF-SAUCE", entities.FillingFlow},
		{"production only", "FG-PROD", "0", "Packing created. Downstream entries: Production: WIP-BASE", entities.ProductionFlow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			result, err := NewSOHService(h.f.Store, h.publisher, zerolog.Nop()).Save(context.Background(), sohInput(tc.code, tc.boxes))
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Message)
			assert.Equal(t, tc.flow, result.Flow)
		})
	}
}

func TestSOHService_Rejects(t *testing.T) {
	h := newHarness()
	svc := NewSOHService(h.f.Store, h.publisher, zerolog.Nop())

	_, err := svc.Save(context.Background(), sohInput("FG-NOPE", "1"))
	assert.True(t, errors.Is(err, entities.ErrNotFound))

	_, err = svc.Save(context.Background(), sohInput("FG-COMPLEX", "-1"))
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Save(context.Background(), SOHInput{ItemCode: "FG-COMPLEX"})
	assert.True(t, errors.Is(err, entities.ErrValidation), "week commencing is required")

	rows, err := h.f.Store.Packing().ListByWeek(context.Background(), monday)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSOHService_Delete(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewSOHService(h.f.Store, h.publisher, zerolog.Nop())

	result, err := svc.Save(ctx, sohInput("FG-PROD", "0"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, result.StockOnHand.ID))

	_, err = h.f.Store.StockOnHand().FindByID(ctx, result.StockOnHand.ID)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	rows, err := h.f.Store.Packing().ListByWeek(ctx, monday)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.True(t, errors.Is(svc.Delete(ctx, result.StockOnHand.ID), entities.ErrNotFound))
}
