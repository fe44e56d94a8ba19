package explosion

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

func newAggregator(f *fixtures.Fixture) *Aggregator {
	return NewAggregator(f.Store.Items(), f.Store.Recipes(), zerolog.Nop())
}

func TestAggregator_ExplodeDownstream(t *testing.T) {
	testCases := []struct {
		name           string
		start          string
		kg             string
		wantFilling    map[string]string
		wantProduction map[string]string
	}{
		{
			name:        "complex flow stops at the filling item",
			start:       "FG-COMPLEX",
			kg:          "800",
			wantFilling: map[string]string{"WIPF-SAUCE": "800"},
		},
		{
			name:           "production flow passes kg through unchanged",
			start:          "FG-PROD",
			kg:             "300",
			wantProduction: map[string]string{"WIP-BASE": "300"},
		},
		{
			name:           "starting at a filling item reaches its wip",
			start:          "WIPF-SAUCE",
			kg:             "120",
			wantProduction: map[string]string{"WIP-BASE": "120"},
		},
		{
			name:  "item without a recipe needs nothing",
			start: "FG-DIRECT",
			kg:    "50",
		},
		{
			name:  "zero kg needs nothing",
			start: "FG-PROD",
			kg:    "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := fixtures.BuildPlant()
			needs := NewNeeds()

			err := newAggregator(f).ExplodeDownstream(context.Background(), f.ID(tc.start), fixtures.Dec(tc.kg), needs)
			require.NoError(t, err)

			assert.Len(t, needs.Filling, len(tc.wantFilling))
			for code, kg := range tc.wantFilling {
				assert.Equal(t, kg, needs.Filling[f.ID(code)].String(), code)
			}
			assert.Len(t, needs.Production, len(tc.wantProduction))
			for code, kg := range tc.wantProduction {
				assert.Equal(t, kg, needs.Production[f.ID(code)].String(), code)
			}
			assert.Empty(t, needs.Truncations)
		})
	}
}

func TestAggregator_SharedWIPIsSummed(t *testing.T) {
	f := fixtures.NewFixture()
	f.RM("RM-TOMATO")
	f.WIP("WIP-PASTE")
	f.Recipe("WIP-PASTE", "RM-TOMATO", "1")
	f.FG("FG-JAR", fixtures.FGOptions{WIP: "WIP-PASTE"})
	f.FG("FG-TIN", fixtures.FGOptions{WIP: "WIP-PASTE"})
	f.Recipe("FG-JAR", "WIP-PASTE", "1")
	f.Recipe("FG-TIN", "WIP-PASTE", "1")

	ctx := context.Background()
	agg := newAggregator(f)
	needs := NewNeeds()
	require.NoError(t, agg.ExplodeDownstream(ctx, f.ID("FG-JAR"), fixtures.Dec("300"), needs))
	require.NoError(t, agg.ExplodeDownstream(ctx, f.ID("FG-TIN"), fixtures.Dec("150"), needs))

	amounts := needs.ProductionAmounts()
	require.Len(t, amounts, 1)
	assert.Equal(t, f.ID("WIP-PASTE"), amounts[0].ItemID)
	assert.Equal(t, "450", amounts[0].Kg.String())
}

func TestAggregator_CycleIsCutAtMaxDepth(t *testing.T) {
	f := fixtures.NewFixture()
	f.WIP("WIP-A")
	f.WIP("WIP-B")
	f.Recipe("WIP-A", "WIP-B", "1")
	f.Recipe("WIP-B", "WIP-A", "1")

	var buf bytes.Buffer
	agg := NewAggregator(f.Store.Items(), f.Store.Recipes(), zerolog.New(&buf))
	needs := NewNeeds()

	err := agg.ExplodeDownstream(context.Background(), f.ID("WIP-A"), fixtures.Dec("100"), needs)
	require.NoError(t, err)

	// levels 1..11 alternate B, A, B ...; the level 11 B is counted but not expanded
	assert.Equal(t, "600", needs.Production[f.ID("WIP-B")].String())
	assert.Equal(t, "500", needs.Production[f.ID("WIP-A")].String())
	require.Len(t, needs.Truncations, 1)
	assert.Equal(t, MaxDepth+1, needs.Truncations[0].Level)
	assert.Equal(t, f.ID("WIP-B"), needs.Truncations[0].ItemID)
	assert.Contains(t, buf.String(), "max recursion depth reached")
}

func TestAggregator_ExplodeDownstreamCancelled(t *testing.T) {
	f := fixtures.BuildPlant()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newAggregator(f).ExplodeDownstream(ctx, f.ID("FG-PROD"), fixtures.Dec("1"), NewNeeds())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregator_CalculateComponentRequirements(t *testing.T) {
	f := fixtures.BuildPlant()

	reqs, err := newAggregator(f).CalculateComponentRequirements(context.Background(), f.ID("WIP-BASE"), fixtures.Dec("150"))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "RM-FLOUR", string(reqs[0].ComponentCode))
	assert.Equal(t, "90", reqs[0].RequiredKg.String())
	assert.Equal(t, "RM-WATER", string(reqs[1].ComponentCode))
	assert.Equal(t, "60", reqs[1].RequiredKg.String())

	reqs, err = newAggregator(f).CalculateComponentRequirements(context.Background(), f.ID("RM-SALT"), fixtures.Dec("10"))
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestNeeds_Merge(t *testing.T) {
	a := NewNeeds()
	a.addFilling(1, fixtures.Dec("10"))
	a.addProduction(2, fixtures.Dec("5"))

	b := NewNeeds()
	b.addFilling(1, fixtures.Dec("2.5"))
	b.addFilling(3, fixtures.Dec("1"))
	b.Truncations = []Truncation{{ItemID: 9, Level: 11}}

	a.Merge(b)

	filling := a.FillingAmounts()
	require.Len(t, filling, 2)
	assert.Equal(t, "12.5", filling[0].Kg.String())
	assert.Equal(t, "1", filling[1].Kg.String())
	assert.Equal(t, "5", a.Production[2].String())
	assert.Len(t, a.Truncations, 1)
}
