package planning

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

var (
	monday    = fixtures.Day("2025-01-06")
	tuesday   = fixtures.Day("2025-01-07")
	wednesday = fixtures.Day("2025-01-08")
)

type harness struct {
	f         *fixtures.Fixture
	events    *events.InMemoryEventStore
	publisher *events.Publisher
}

func newHarness() *harness {
	store := events.NewInMemoryEventStore(zerolog.Nop())
	return &harness{
		f:         fixtures.BuildPlant(),
		events:    store,
		publisher: events.NewPublisher(store),
	}
}

func (h *harness) eventTypes(t *testing.T, day time.Time) []string {
	t.Helper()
	evts, err := h.events.ReadEvents(events.DayStream(day), 1)
	require.NoError(t, err)
	types := make([]string, 0, len(evts))
	for _, e := range evts {
		types = append(types, e.Type())
	}
	return types
}

func (h *harness) addPacking(t *testing.T, code string, day time.Time, kg string) {
	t.Helper()
	p := &entities.Packing{
		ItemID:         h.f.ID(code),
		PackingDate:    day,
		WeekCommencing: entities.WeekCommencing(day),
	}
	p.RequirementKg = fixtures.Dec(kg)
	require.NoError(t, h.f.Store.Packing().Create(context.Background(), p))
}

func (h *harness) addProduction(t *testing.T, code string, day time.Time, kg string) *entities.Production {
	t.Helper()
	p, err := entities.NewProduction(h.f.Item(code), day, entities.WeekCommencing(day), fixtures.Dec(kg))
	require.NoError(t, err)
	require.NoError(t, h.f.Store.Production().Create(context.Background(), p))
	return p
}

func (h *harness) addFilling(t *testing.T, code string, day time.Time, kg string) *entities.Filling {
	t.Helper()
	f, err := entities.NewFilling(h.f.ID(code), day, fixtures.Dec(kg))
	require.NoError(t, err)
	require.NoError(t, h.f.Store.Filling().Create(context.Background(), f))
	return f
}

func (h *harness) production(t *testing.T, code string, day time.Time) *entities.Production {
	t.Helper()
	p, err := h.f.Store.Production().Find(context.Background(), entities.ProductionKey{ProductionDate: day, ItemID: h.f.ID(code)})
	require.NoError(t, err)
	return p
}
