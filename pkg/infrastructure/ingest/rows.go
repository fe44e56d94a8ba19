package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	appingest "github.com/vsinha/bomplan/pkg/application/services/ingest"
	"github.com/vsinha/bomplan/pkg/application/services/planning"
	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// Upload column headers
const (
	ColFGCode         = "FG Code"
	ColDescription    = "Description"
	ColWeekCommencing = "Week Commencing"
	ColDispatchBoxes  = "Soh_dispatch_Box"
	ColDispatchUnits  = "Soh_dispatch_Unit"
	ColPackingBoxes   = "Soh_packing_Box"
	ColPackingUnits   = "Soh_packing_Unit"
)

var requiredColumns = []string{ColFGCode, ColDispatchBoxes, ColDispatchUnits, ColPackingBoxes, ColPackingUnits}

var dateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006", "2006/01/02"}

// rowParser maps header names to column positions
type rowParser struct {
	columns map[string]int
}

func newRowParser(header []string) (*rowParser, error) {
	p := &rowParser{columns: make(map[string]int, len(header))}
	for i, name := range header {
		p.columns[normalize(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := p.columns[normalize(col)]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", entities.ErrValidation, col)
		}
	}
	return p, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func (p *rowParser) cell(record []string, col string) string {
	i, ok := p.columns[normalize(col)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parse converts one record. Failures come back as *ingest.RowError.
func (p *rowParser) parse(number int, record []string) (appingest.Row, error) {
	code := p.cell(record, ColFGCode)
	fail := func(err error) (appingest.Row, error) {
		return appingest.Row{}, &appingest.RowError{Row: number, Code: code, Err: err}
	}
	if code == "" {
		return fail(fmt.Errorf("%w: %s is empty", entities.ErrValidation, ColFGCode))
	}

	in := planning.SOHInput{ItemCode: code}

	if raw := p.cell(record, ColWeekCommencing); raw != "" {
		week, err := parseDate(raw)
		if err != nil {
			return fail(err)
		}
		in.WeekCommencing = week
	}

	counts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColDispatchBoxes, &in.DispatchBoxes},
		{ColDispatchUnits, &in.DispatchUnits},
		{ColPackingBoxes, &in.PackingBoxes},
		{ColPackingUnits, &in.PackingUnits},
	}
	for _, c := range counts {
		v, err := parseCount(p.cell(record, c.col))
		if err != nil {
			return fail(fmt.Errorf("%s: %w", c.col, err))
		}
		*c.dst = v
	}

	return appingest.Row{Number: number, Input: in}, nil
}

func parseCount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid number %q", entities.ErrValidation, raw)
	}
	return v, nil
}

// parseDate accepts day-first and ISO layouts as well as spreadsheet serial dates
func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return entities.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", entities.ErrValidation, raw)
}
