package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/application/dto"
)

var (
	itemsHeader = []string{
		"code", "description", "type", "wip_code", "wipf_code", "calculation_factor",
		"kg_per_unit", "avg_weight_per_unit", "units_per_bag", "min_level", "max_level",
	}
	recipesHeader = []string{"parent_code", "component_code", "quantity_kg"}
)

// Loader reads the item catalog and recipe table from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadItems loads catalog rows from a CSV file
func (l *Loader) LoadItems(filename string) ([]dto.ItemRow, error) {
	records, err := readRecords(filename, itemsHeader)
	if err != nil {
		return nil, fmt.Errorf("items CSV: %w", err)
	}

	rows := make([]dto.ItemRow, 0, len(records))
	for i, record := range records {
		row, err := parseItem(record)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadRecipes loads recipe rows from a CSV file
func (l *Loader) LoadRecipes(filename string) ([]dto.RecipeRow, error) {
	records, err := readRecords(filename, recipesHeader)
	if err != nil {
		return nil, fmt.Errorf("recipes CSV: %w", err)
	}

	rows := make([]dto.RecipeRow, 0, len(records))
	for i, record := range records {
		qty, err := parseDecimal(record[2])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: invalid quantity_kg: %w", i+2, err)
		}
		rows = append(rows, dto.RecipeRow{
			ParentCode:    strings.TrimSpace(record[0]),
			ComponentCode: strings.TrimSpace(record[1]),
			QuantityKg:    qty,
		})
	}
	return rows, nil
}

// readRecords returns the data rows of a CSV file after checking its header
func readRecords(filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()
	return parseRecords(file, expectedHeader)
}

func parseRecords(r io.Reader, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("missing header")
	}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (dto.ItemRow, error) {
	row := dto.ItemRow{
		Code:        strings.TrimSpace(record[0]),
		Description: strings.TrimSpace(record[1]),
		Type:        strings.TrimSpace(record[2]),
		WIPCode:     strings.TrimSpace(record[3]),
		WIPFCode:    strings.TrimSpace(record[4]),
	}

	decimals := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"calculation_factor", record[5], &row.CalculationFactor},
		{"kg_per_unit", record[6], &row.KgPerUnit},
		{"avg_weight_per_unit", record[7], &row.AvgWeightPerUnit},
		{"min_level", record[9], &row.MinLevel},
		{"max_level", record[10], &row.MaxLevel},
	}
	for _, d := range decimals {
		v, err := parseDecimal(d.raw)
		if err != nil {
			return dto.ItemRow{}, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if raw := strings.TrimSpace(record[8]); raw != "" {
		bag, err := strconv.Atoi(raw)
		if err != nil {
			return dto.ItemRow{}, fmt.Errorf("invalid units_per_bag: %w", err)
		}
		row.UnitsPerBag = bag
	}
	return row, nil
}

// parseDecimal reads an optional number, empty meaning zero
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
