package ingest

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	appingest "github.com/vsinha/bomplan/pkg/application/services/ingest"
	"github.com/vsinha/bomplan/pkg/domain/entities"
)

const header = "FG Code,Description,Week Commencing,Soh_dispatch_Box,Soh_dispatch_Unit,Soh_packing_Box,Soh_packing_Unit\n"

func readAll(t *testing.T, src appingest.RowSource) ([]appingest.Row, []*appingest.RowError) {
	t.Helper()
	var rows []appingest.Row
	var rowErrs []*appingest.RowError
	for {
		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			return rows, rowErrs
		}
		var rowErr *appingest.RowError
		if errors.As(err, &rowErr) {
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		require.NoError(t, err)
		rows = append(rows, r)
	}
}

func TestCSVSource(t *testing.T) {
	data := header +
		"FG-1,Jar,06-01-2025,5,3,\"1,200\",0\n" +
		",,,,,,\n" +
		"FG-2,Tin,2025-01-13,,,,\n" +
		"FG-3,Bad,06-01-2025,abc,0,0,0\n" +
		",Missing code,06-01-2025,1,0,0,0\n"

	src, err := NewCSVSource(strings.NewReader(data), "")
	require.NoError(t, err)
	rows, rowErrs := readAll(t, src)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "FG-1", rows[0].Input.ItemCode)
	assert.True(t, rows[0].Input.WeekCommencing.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1200", rows[0].Input.PackingBoxes.String())
	assert.Equal(t, 4, rows[1].Number)
	assert.True(t, rows[1].Input.DispatchBoxes.IsZero())

	require.Len(t, rowErrs, 2)
	assert.Equal(t, 5, rowErrs[0].Row)
	assert.Equal(t, "FG-3", rowErrs[0].Code)
	assert.True(t, errors.Is(rowErrs[0], entities.ErrValidation))
	assert.Equal(t, 6, rowErrs[1].Row)
}

func TestCSVSource_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String(header + "FG-1,Crème fraîche,06-01-2025,1,0,0,0\n")
	require.NoError(t, err)

	src, err := NewCSVSource(strings.NewReader(encoded), "windows-1252")
	require.NoError(t, err)
	rows, rowErrs := readAll(t, src)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Input.DispatchBoxes.String())
}

func TestCSVSource_HeaderErrors(t *testing.T) {
	_, err := NewCSVSource(strings.NewReader("FG Code,Description\nFG-1,x\n"), "")
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = NewCSVSource(strings.NewReader(""), "")
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = NewCSVSource(strings.NewReader(header), "ebcdic")
	assert.True(t, errors.Is(err, entities.ErrValidation))
}

func TestCSVSource_ByteOrderMark(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader("\ufeff"+header+"FG-1,,,1,0,0,0\n"), "utf-8")
	require.NoError(t, err)
	rows, _ := readAll(t, src)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Input.WeekCommencing.IsZero())
}

func TestXLSXSource(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]any{
		{ColFGCode, ColDescription, ColWeekCommencing, ColDispatchBoxes, ColDispatchUnits, ColPackingBoxes, ColPackingUnits},
		{"FG-1", "Jar", "06-01-2025", 5, 3, 2, 1},
		{},
		{"FG-2", "Tin", "45663", 1, 0, 0, 0},
	}
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &record))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	src, err := NewXLSXSource(&buf)
	require.NoError(t, err)
	rows, rowErrs := readAll(t, src)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "5", rows[0].Input.DispatchBoxes.String())
	assert.Equal(t, "1", rows[0].Input.PackingUnits.String())
	assert.Equal(t, 4, rows[1].Number)
	// serial 45663 is 2025-01-06
	assert.True(t, rows[1].Input.WeekCommencing.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
}

func TestXLSXSource_MissingColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", ColFGCode))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := NewXLSXSource(&buf)
	assert.True(t, errors.Is(err, entities.ErrValidation))
}
