package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Tabular decodes xlsx or csv grade lists.
type Tabular struct {
	logger *slog.Logger
}

func NewTabular(logger *slog.Logger) *Tabular {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tabular{logger: logger}
}

// Extract decodes blob, finds the header row and maps every following row
// onto the schema columns.
func (t *Tabular) Extract(ctx context.Context, blob []byte, schema HeaderSchema) (Table, error) {
	log := common.LoggerFromContext(ctx, t.logger)

	grid, format, err := decodeGrid(blob)
	if err != nil {
		log.Warn("extract.tabular.decode_failed", "bytes", len(blob), "err", err)
		return Table{}, err
	}

	headerRow, cols, err := locateHeader(grid, schema)
	if err != nil {
		log.Warn("extract.tabular.header_missing", "format", format, "rows", len(grid))
		return Table{}, err
	}

	headers := make([]string, 0, len(cols))
	headers = append(headers, schema.Required...)
	for _, name := range schema.Optional {
		if _, ok := cols[name]; ok {
			headers = append(headers, name)
		}
	}

	table := Table{Headers: headers, HeaderRow: headerRow, Format: format}
	for _, row := range grid[headerRow+1:] {
		if blankRow(row) {
			continue
		}
		rec := make(map[string]string, len(headers))
		for _, name := range headers {
			j := cols[name]
			if j < len(row) {
				rec[name] = strings.TrimSpace(row[j])
			} else {
				rec[name] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}

	log.Info("extract.tabular.ok", "format", format, "header_row", headerRow, "rows", len(table.Rows))
	return table, nil
}

func decodeGrid(blob []byte) ([][]string, string, error) {
	if len(blob) == 0 {
		return nil, "", &common.DecodeError{Format: "unknown", Cause: errors.New("empty file")}
	}
	switch {
	case bytes.HasPrefix(blob, zipMagic):
		grid, err := readWorkbook(blob)
		if err != nil {
			return nil, "xlsx", &common.DecodeError{Format: "xlsx", Cause: err}
		}
		return grid, "xlsx", nil
	case bytes.HasPrefix(blob, oleMagic):
		// Legacy .xls and encrypted workbooks share the OLE container; only
		// the latter can be opened.
		grid, err := readWorkbook(blob)
		if err != nil {
			return nil, "xls", &common.DecodeError{Format: "xls", Cause: fmt.Errorf("legacy or password-protected workbook, re-save as .xlsx: %w", err)}
		}
		return grid, "xls", nil
	default:
		grid, err := readCSV(blob)
		if err != nil {
			return nil, "csv", &common.DecodeError{Format: "csv", Cause: err}
		}
		return grid, "csv", nil
	}
}

func readWorkbook(blob []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(blob []byte) ([][]string, error) {
	blob = bytes.TrimPrefix(blob, utf8BOM)
	if bytes.IndexByte(blob, 0) >= 0 {
		return nil, errors.New("binary content is not csv")
	}
	r := csv.NewReader(bytes.NewReader(blob))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var grid [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		grid = append(grid, rec)
	}
	return grid, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
