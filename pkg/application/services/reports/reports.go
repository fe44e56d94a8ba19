package reports

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/domain/entities"
)

const usageQuery = `
	SELECT p.production_date, p.production_code, p.batches,
	       c.code AS component_code, c.description AS component_description,
	       c.item_type AS component_type, r.quantity_kg
	FROM productions p
	JOIN recipes r ON r.parent_id = p.item_id
	JOIN items c ON c.id = r.component_id
	WHERE p.production_date >= ? AND p.production_date <= ?
	ORDER BY p.production_date, p.production_code, c.code`

const weeklyQuery = `
	SELECT p.id AS production_id, p.item_id, p.total_kg,
	       c.id AS component_id, c.code, c.description, c.item_type, r.quantity_kg
	FROM productions p
	JOIN recipes r ON r.parent_id = p.item_id
	JOIN items c ON c.id = r.component_id
	WHERE p.week_commencing = ?
	ORDER BY p.id, r.id`

// Service runs read-only planning reports
type Service struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewService creates a report service over an open connection
func NewService(db *sqlx.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "reports").Logger()}
}

// ProductionUsage lists component usage of every production row between from
// and to inclusive. usage_kg is quantity_kg times batches.
func (s *Service) ProductionUsage(ctx context.Context, from, to time.Time) ([]dto.UsageRow, error) {
	from, to = entities.DateOf(from), entities.DateOf(to)
	if to.Before(from) {
		return nil, entities.Invalidf("report range ends before it starts: %s > %s",
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var rows []dto.UsageRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(usageQuery), from, to); err != nil {
		return nil, fmt.Errorf("%w: production usage: %v", entities.ErrPersistence, err)
	}
	for i := range rows {
		rows[i].UsageKg = rows[i].QuantityKg.Mul(rows[i].Batches)
	}
	s.log.Debug().Int("rows", len(rows)).Msg("production usage report")
	return rows, nil
}

type weeklyLine struct {
	ProductionID uint            `db:"production_id"`
	ItemID       uint            `db:"item_id"`
	TotalKg      decimal.Decimal `db:"total_kg"`
	ComponentID  uint            `db:"component_id"`
	Code         string          `db:"code"`
	Description  string          `db:"description"`
	ItemType     string          `db:"item_type"`
	QuantityKg   decimal.Decimal `db:"quantity_kg"`
}

// RawMaterialWeekly totals raw material kg for the productions of a week. Each
// production's kg is split over its recipe in proportion to quantity_kg.
func (s *Service) RawMaterialWeekly(ctx context.Context, week time.Time) ([]dto.RawMaterialUsage, error) {
	week = entities.WeekCommencing(week)

	var lines []weeklyLine
	if err := s.db.SelectContext(ctx, &lines, s.db.Rebind(weeklyQuery), week); err != nil {
		return nil, fmt.Errorf("%w: raw material usage: %v", entities.ErrPersistence, err)
	}

	recipeTotal := make(map[uint]decimal.Decimal)
	for _, l := range lines {
		recipeTotal[l.ProductionID] = recipeTotal[l.ProductionID].Add(l.QuantityKg)
	}

	usage := make(map[uint]*dto.RawMaterialUsage)
	for _, l := range lines {
		if l.ItemType != entities.RawMaterialType.String() {
			continue
		}
		total := recipeTotal[l.ProductionID]
		if !total.IsPositive() {
			continue
		}
		u, ok := usage[l.ComponentID]
		if !ok {
			u = &dto.RawMaterialUsage{WeekCommencing: week, Code: l.Code, Description: l.Description}
			usage[l.ComponentID] = u
		}
		u.UsageKg = u.UsageKg.Add(l.TotalKg.Mul(l.QuantityKg).Div(total))
	}

	result := make([]dto.RawMaterialUsage, 0, len(usage))
	for _, u := range usage {
		result = append(result, *u)
	}
	slices.SortFunc(result, func(a, b dto.RawMaterialUsage) int { return cmp.Compare(a.Code, b.Code) })
	return result, nil
}
