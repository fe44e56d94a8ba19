package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	appingest "github.com/vsinha/bomplan/pkg/application/services/ingest"
	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// XLSXSource reads stock-on-hand rows from the first sheet of a workbook
type XLSXSource struct {
	rows   [][]string
	parser *rowParser
	next   int
}

var _ appingest.RowSource = (*XLSXSource)(nil)

// NewXLSXSource loads the first sheet of the workbook in r
func NewXLSXSource(r io.Reader) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", entities.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", entities.ErrValidation, sheets[0])
	}

	parser, err := newRowParser(rows[0])
	if err != nil {
		return nil, err
	}
	return &XLSXSource{rows: rows, parser: parser, next: 1}, nil
}

// Next returns the next non-blank row
func (s *XLSXSource) Next() (appingest.Row, error) {
	for s.next < len(s.rows) {
		record := s.rows[s.next]
		s.next++
		if blank(record) {
			continue
		}
		return s.parser.parse(s.next, record)
	}
	return appingest.Row{}, io.EOF
}
