package bom

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

func newResolver(f *fixtures.Fixture) *Resolver {
	return NewResolver(f.Store.Items(), f.Store.Recipes(), zerolog.Nop())
}

func TestResolver_Resolve(t *testing.T) {
	f := fixtures.BuildPlant()
	resolver := newResolver(f)

	testCases := []struct {
		code     string
		flow     entities.FlowType
		wantWIPF string
		wantWIP  string
	}{
		{"FG-COMPLEX", entities.ComplexFlow, "WIPF-SAUCE", "WIP-BASE"},
		{"FG-PROD", entities.ProductionFlow, "", "WIP-BASE"},
		{"FG-FILL", entities.FillingFlow, "WIPF-SAUCE", ""},
		{"FG-DIRECT", entities.DirectProduction, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			h, found, err := resolver.Resolve(context.Background(), entities.ItemCode(tc.code))
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tc.flow, h.Flow)

			if tc.wantWIPF == "" {
				assert.Nil(t, h.WIPF)
			} else {
				require.NotNil(t, h.WIPF)
				assert.Equal(t, entities.ItemCode(tc.wantWIPF), h.WIPF.Code)
			}
			if tc.wantWIP == "" {
				assert.Nil(t, h.WIP)
			} else {
				require.NotNil(t, h.WIP)
				assert.Equal(t, entities.ItemCode(tc.wantWIP), h.WIP.Code)
			}
		})
	}
}

func TestResolver_ResolveNotFinishedGood(t *testing.T) {
	resolver := newResolver(fixtures.BuildPlant())

	for _, code := range []entities.ItemCode{"RM-FLOUR", "WIP-BASE", "NOPE"} {
		h, found, err := resolver.Resolve(context.Background(), code)
		require.NoError(t, err, code)
		assert.False(t, found, code)
		assert.Nil(t, h, code)
	}
}

func TestResolver_DanglingLinkIsAbsent(t *testing.T) {
	f := fixtures.BuildPlant()
	item, err := entities.NewItem("FG-ORPHAN", "orphan", entities.FinishedGood{WIP: 999})
	require.NoError(t, err)
	require.NoError(t, f.Store.Items().Save(context.Background(), item))

	h, found, err := newResolver(f).Resolve(context.Background(), "FG-ORPHAN")
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, h.WIP)
	assert.Equal(t, entities.DirectProduction, h.Flow)
}

func TestResolver_ResolveAll(t *testing.T) {
	hierarchies, err := newResolver(fixtures.BuildPlant()).ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, hierarchies, 4)
}

func TestResolver_ExplosionSummary(t *testing.T) {
	resolver := newResolver(fixtures.BuildPlant())

	summary, err := resolver.ExplosionSummary(context.Background(), "FG-COMPLEX")
	require.NoError(t, err)
	require.Len(t, summary.Levels, 3)
	assert.Equal(t, 1, summary.Levels[0].Level)
	assert.Equal(t, entities.WorkInProgressFillingType, summary.Levels[1].Type)
	assert.Equal(t, 3, summary.Levels[2].Level)
	assert.Equal(t, entities.ItemCode("WIP-BASE"), summary.Levels[2].Code)

	summary, err = resolver.ExplosionSummary(context.Background(), "FG-PROD")
	require.NoError(t, err)
	require.Len(t, summary.Levels, 2)
	assert.Equal(t, 3, summary.Levels[1].Level)

	_, err = resolver.ExplosionSummary(context.Background(), "RM-FLOUR")
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestResolver_DownstreamRequirements(t *testing.T) {
	resolver := newResolver(fixtures.BuildPlant())

	preview, err := resolver.DownstreamRequirements(context.Background(), "FG-PROD", fixtures.Dec("100"))
	require.NoError(t, err)

	assert.Equal(t, "150", preview.AdjustedQuantity.String())
	assert.Equal(t, "150", preview.Packing.RequirementKg.String())
	assert.Nil(t, preview.Filling)
	require.NotNil(t, preview.Production)
	assert.Equal(t, "150", preview.Production.RequirementKg.String())
	require.Len(t, preview.Production.Components, 2)
	assert.Equal(t, "90", preview.Production.Components[0].RequiredKg.String())
	assert.Equal(t, "60", preview.Production.Components[1].RequiredKg.String())

	preview, err = resolver.DownstreamRequirements(context.Background(), "FG-COMPLEX", fixtures.Dec("10"))
	require.NoError(t, err)
	require.NotNil(t, preview.Filling)
	require.NotNil(t, preview.Production)
	assert.Equal(t, "9", preview.Filling.Components[0].RequiredKg.String())
}

func TestResolver_RecipeSummary(t *testing.T) {
	resolver := newResolver(fixtures.BuildPlant())

	summary, err := resolver.RecipeSummary(context.Background(), "WIPF-SAUCE")
	require.NoError(t, err)
	assert.Equal(t, entities.WorkInProgressFillingType, summary.Type)
	assert.Equal(t, "1", summary.TotalKg.String())
	assert.Len(t, summary.Components, 2)

	_, err = resolver.RecipeSummary(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}
