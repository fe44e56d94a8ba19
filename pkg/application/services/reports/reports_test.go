package reports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/bomplan/pkg/application/services/reports"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/infrastructure/database"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/gormrepo"
	fixtures "github.com/vsinha/bomplan/pkg/infrastructure/testing"
)

var (
	monday    = fixtures.Day("2025-01-06")
	tuesday   = fixtures.Day("2025-01-07")
	wednesday = fixtures.Day("2025-01-08")
)

func newService(t *testing.T) *reports.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gormrepo.Migrate(db))

	store := gormrepo.NewStore(db)
	f := fixtures.BuildPlantInto(fixtures.NewFixtureFor(store))
	for _, p := range []struct {
		code string
		day  string
		kg   string
	}{
		{"WIP-BASE", "2025-01-06", "600"},
		{"WIPF-SAUCE", "2025-01-06", "100"},
		{"WIP-BASE", "2025-01-07", "300"},
		{"WIP-BASE", "2025-01-13", "900"},
	} {
		day := fixtures.Day(p.day)
		production, err := entities.NewProduction(f.Item(p.code), day, entities.WeekCommencing(day), fixtures.Dec(p.kg))
		require.NoError(t, err)
		require.NoError(t, store.Production().Create(context.Background(), production))
	}

	sqlxDB, err := database.SQLX(db)
	require.NoError(t, err)
	return reports.NewService(sqlxDB, zerolog.Nop())
}

func TestService_ProductionUsage(t *testing.T) {
	svc := newService(t)

	rows, err := svc.ProductionUsage(context.Background(), monday, tuesday)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	first := rows[0]
	assert.True(t, first.ProductionDate.Equal(monday))
	assert.Equal(t, "WIP-BASE", first.ProductionCode)
	assert.Equal(t, "RM-FLOUR", first.ComponentCode)
	assert.Equal(t, "RM", first.ComponentType)
	// 0.6 kg per batch over 2 batches
	assert.Equal(t, "1.2", first.UsageKg.String())

	last := rows[5]
	assert.True(t, last.ProductionDate.Equal(tuesday))
	assert.Equal(t, "RM-WATER", last.ComponentCode)
	assert.Equal(t, "0.4", last.UsageKg.String())

	rows, err = svc.ProductionUsage(context.Background(), tuesday, tuesday)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestService_ProductionUsageRejectsBackwardsRange(t *testing.T) {
	_, err := newService(t).ProductionUsage(context.Background(), tuesday, monday)
	assert.True(t, errors.Is(err, entities.ErrValidation))
}

func TestService_RawMaterialWeekly(t *testing.T) {
	usage, err := newService(t).RawMaterialWeekly(context.Background(), wednesday)
	require.NoError(t, err)
	require.Len(t, usage, 3)

	want := []struct{ code, kg string }{
		{"RM-FLOUR", "540"},
		{"RM-SALT", "10"},
		{"RM-WATER", "360"},
	}
	for i, w := range want {
		assert.Equal(t, w.code, usage[i].Code)
		assert.True(t, fixtures.Dec(w.kg).Equal(usage[i].UsageKg), "%s: got %s", w.code, usage[i].UsageKg)
		assert.True(t, usage[i].WeekCommencing.Equal(monday))
	}
}
