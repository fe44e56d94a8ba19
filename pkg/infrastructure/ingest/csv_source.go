package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	appingest "github.com/vsinha/bomplan/pkg/application/services/ingest"
	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// CSVSource reads stock-on-hand rows from a CSV export
type CSVSource struct {
	reader *csv.Reader
	parser *rowParser
	line   int
}

var _ appingest.RowSource = (*CSVSource)(nil)

// decoderFor returns the text decoder for an encoding name
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", entities.ErrValidation, name)
	}
}

// NewCSVSource reads the header of r, decoding it from the named encoding
func NewCSVSource(r io.Reader, encodingName string) (*CSVSource, error) {
	enc, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(enc.NewDecoder().Reader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV has no header", entities.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	parser, err := newRowParser(header)
	if err != nil {
		return nil, err
	}
	return &CSVSource{reader: reader, parser: parser, line: 1}, nil
}

// Next returns the next non-blank row
func (s *CSVSource) Next() (appingest.Row, error) {
	for {
		record, err := s.reader.Read()
		if err != nil {
			return appingest.Row{}, err
		}
		s.line++
		if blank(record) {
			continue
		}
		return s.parser.parse(s.line, record)
	}
}
