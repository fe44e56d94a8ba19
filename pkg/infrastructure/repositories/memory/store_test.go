package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

var (
	monday  = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func newItem(t *testing.T, store *Store, code string, kind entities.ItemKind) *entities.Item {
	t.Helper()
	item, err := entities.NewItem(entities.ItemCode(code), code+" description", kind)
	require.NoError(t, err)
	require.NoError(t, store.Items().Save(context.Background(), item))
	return item
}

func TestItemRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewStore(4)

	rm := newItem(t, store, "RM1", entities.RawMaterial{})
	wip := newItem(t, store, "WIP1", entities.WorkInProgress{})
	assert.NotZero(t, rm.ID)
	assert.NotEqual(t, rm.ID, wip.ID)

	found, err := store.Items().FindByCode(ctx, "WIP1")
	require.NoError(t, err)
	assert.Equal(t, wip.ID, found.ID)

	found, err = store.Items().FindByID(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ItemCode("RM1"), found.Code)

	_, err = store.Items().FindByCode(ctx, "NOPE")
	assert.True(t, errors.Is(err, entities.ErrNotFound))

	rms, err := store.Items().FindByType(ctx, entities.RawMaterialType)
	require.NoError(t, err)
	require.Len(t, rms, 1)
	assert.Equal(t, rm.ID, rms[0].ID)

	found.Description = "renamed"
	require.NoError(t, store.Items().Save(ctx, found))
	again, err := store.Items().FindByID(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Description)
}

func TestItemRepository_DuplicateCode(t *testing.T) {
	store := NewStore(2)
	newItem(t, store, "RM1", entities.RawMaterial{})

	dup, err := entities.NewItem("RM1", "again", entities.RawMaterial{})
	require.NoError(t, err)
	err = store.Items().Save(context.Background(), dup)
	assert.True(t, errors.Is(err, entities.ErrDuplicate))
	assert.True(t, errors.Is(err, entities.ErrValidation))
}

func TestRecipeRepository_Save(t *testing.T) {
	ctx := context.Background()
	store := NewStore(2)
	wip := newItem(t, store, "WIP1", entities.WorkInProgress{})
	rm := newItem(t, store, "RM1", entities.RawMaterial{})

	l, err := entities.NewRecipeLine(wip.ID, rm.ID, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	require.NoError(t, store.Recipes().Save(ctx, l))

	dup, err := entities.NewRecipeLine(wip.ID, rm.ID, decimal.RequireFromString("0.7"))
	require.NoError(t, err)
	assert.True(t, errors.Is(store.Recipes().Save(ctx, dup), entities.ErrDuplicate))

	l.QuantityKg = decimal.RequireFromString("0.8")
	require.NoError(t, store.Recipes().Save(ctx, l))

	components, err := store.Recipes().FindComponentsOf(ctx, wip.ID)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "0.8", components[0].QuantityKg.String())

	parents, err := store.Recipes().FindParentsOf(ctx, rm.ID)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, wip.ID, parents[0].ParentID)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore(2)
	wip := newItem(t, store, "WIP1", entities.WorkInProgress{})

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx repositories.Store) error {
		p, err := entities.NewProduction(wip, monday, monday, decimal.NewFromInt(300))
		if err != nil {
			return err
		}
		if err := tx.Production().Create(ctx, p); err != nil {
			return err
		}
		newItem(t, tx.(*Store), "RM1", entities.RawMaterial{})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := store.Production().ListByDate(ctx, monday, monday)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = store.Items().FindByCode(ctx, "RM1")
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestStore_TransactionCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore(2)
	wip := newItem(t, store, "WIP1", entities.WorkInProgress{})

	err := store.Transaction(ctx, func(tx repositories.Store) error {
		p, err := entities.NewProduction(wip, monday, monday, decimal.NewFromInt(300))
		if err != nil {
			return err
		}
		return tx.Production().Create(ctx, p)
	})
	require.NoError(t, err)

	p, err := store.Production().Find(ctx, entities.ProductionKey{ProductionDate: monday, ItemID: wip.ID})
	require.NoError(t, err)
	assert.Equal(t, "1", p.Batches.String())
}

func TestStore_TransactionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore(1).Transaction(ctx, func(repositories.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProductionRepository_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore(1)
	wip := newItem(t, store, "WIP1", entities.WorkInProgress{})

	first, err := entities.NewProduction(wip, monday, monday, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, store.Production().Create(ctx, first))

	second, err := entities.NewProduction(wip, monday, monday, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.True(t, errors.Is(store.Production().Create(ctx, second), entities.ErrDuplicate))

	other, err := entities.NewProduction(wip, tuesday, monday, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, store.Production().Create(ctx, other))

	exists, err := store.Production().ExistsInWeek(ctx, wip.ID, monday)
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err := store.Production().DeleteByDate(ctx, monday, monday)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestPackingRepository_RequirementsByItem(t *testing.T) {
	ctx := context.Background()
	store := NewStore(2)
	a := newItem(t, store, "FG-A", entities.FinishedGood{})
	b := newItem(t, store, "FG-B", entities.FinishedGood{})

	rows := []*entities.Packing{
		{ItemID: b.ID, PackingDate: monday, WeekCommencing: monday, MachineryID: 1},
		{ItemID: a.ID, PackingDate: monday, WeekCommencing: monday, MachineryID: 1},
		{ItemID: a.ID, PackingDate: monday, WeekCommencing: monday, MachineryID: 2},
		{ItemID: b.ID, PackingDate: tuesday, WeekCommencing: monday},
	}
	kgs := []string{"50", "100", "25", "999"}
	for i, p := range rows {
		p.RequirementKg = decimal.RequireFromString(kgs[i])
		require.NoError(t, store.Packing().Create(ctx, p))
	}

	dup := &entities.Packing{ItemID: a.ID, PackingDate: monday, WeekCommencing: monday, MachineryID: 1}
	assert.True(t, errors.Is(store.Packing().Create(ctx, dup), entities.ErrDuplicate))

	reqs, err := store.Packing().RequirementsByItem(ctx, monday, monday)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, a.ID, reqs[0].ItemID)
	assert.Equal(t, "125", reqs[0].Kg.String())
	assert.Equal(t, b.ID, reqs[1].ItemID)
	assert.Equal(t, "50", reqs[1].Kg.String())
}

func TestFillingRepository_SumKgOnDate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(2)

	for _, tc := range []struct {
		item entities.ItemID
		day  time.Time
		kg   int64
	}{
		{1, monday, 100},
		{2, monday, 40},
		{3, monday, 7},
		{1, tuesday, 500},
	} {
		f, err := entities.NewFilling(tc.item, tc.day, decimal.NewFromInt(tc.kg))
		require.NoError(t, err)
		require.NoError(t, store.Filling().Create(ctx, f))
	}

	total, err := store.Filling().SumKgOnDate(ctx, []entities.ItemID{1, 2}, monday)
	require.NoError(t, err)
	assert.Equal(t, "140", total.String())

	total, err = store.Filling().SumKgOnDate(ctx, nil, monday)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestSOHRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	store := NewStore(1)
	fg := newItem(t, store, "FG1", entities.FinishedGood{})

	first, err := entities.NewStockOnHand(fg, monday, decimal.NewFromInt(1), decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, store.StockOnHand().Upsert(ctx, first))

	second, err := entities.NewStockOnHand(fg, tuesday, decimal.NewFromInt(5), decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, store.StockOnHand().Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	found, err := store.StockOnHand().Find(ctx, fg.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, "5", found.DispatchBoxes.String())
}
