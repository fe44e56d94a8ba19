package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

func TestProductionService_Lifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	svc := NewProductionService(h.f.Store, h.publisher, zerolog.Nop())

	in := ProductionInput{ItemCode: "WIP-BASE", Date: wednesday, TotalKg: fixtures.Dec("600")}
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "2", p.Batches.String())
	assert.True(t, p.WeekCommencing.Equal(monday))

	_, err = svc.Create(ctx, in)
	assert.True(t, errors.Is(err, entities.ErrDuplicate))

	in.TotalKg = fixtures.Dec("150")
	updated, err := svc.Update(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "0.5", updated.Batches.String())

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = h.f.Store.Production().FindByID(ctx, p.ID)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestProductionService_RejectsNonWIP(t *testing.T) {
	h := newHarness()
	svc := NewProductionService(h.f.Store, h.publisher, zerolog.Nop())

	_, err := svc.Create(context.Background(), ProductionInput{ItemCode: "FG-PROD", Date: monday, TotalKg: fixtures.Dec("1")})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Create(context.Background(), ProductionInput{ItemCode: "", Date: monday})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Update(context.Background(), 404, ProductionInput{ItemCode: "WIP-BASE", Date: monday, TotalKg: fixtures.Dec("1")})
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestPackingService_SetSpecialOrder(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := NewSOHService(h.f.Store, h.publisher, zerolog.Nop()).Save(ctx, sohInput("FG-COMPLEX", "5"))
	require.NoError(t, err)

	key := entities.PackingKey{WeekCommencing: monday, ItemID: h.f.ID("FG-COMPLEX"), PackingDate: monday}
	svc := NewPackingService(h.f.Store, h.publisher, zerolog.Nop())
	p, err := svc.SetSpecialOrder(ctx, key, SpecialOrderInput{Kg: fixtures.Dec("10"), Units: fixtures.Dec("5")})
	require.NoError(t, err)
	assert.Equal(t, "810", p.RequirementKg.String())
	assert.Equal(t, "405", p.RequirementUnit.String())

	stored, err := h.f.Store.Packing().Find(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "810", stored.RequirementKg.String())

	_, err = svc.SetSpecialOrder(ctx, key, SpecialOrderInput{Kg: fixtures.Dec("-1")})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	key.MachineryID = 9
	_, err = svc.SetSpecialOrder(ctx, key, SpecialOrderInput{})
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}
