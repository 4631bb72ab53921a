package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

const (
	SheetName = "MergedData"
	FileName  = "MergedStudentData.xlsx"
)

// Service renders merged rosters as XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RosterXLSX returns a one-sheet workbook: header row, then one row per
// roster entry in MergedRosterRow field order.
func (s *Service) RosterXLSX(ctx context.Context, subjectID string, rows []entity.MergedRosterRow) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(entity.RosterColumns))
	for i, h := range entity.RosterColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		cells := r.Cells()
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "A", "A", 6)  // no
	_ = f.SetColWidth(SheetName, "B", "B", 18) // serial
	_ = f.SetColWidth(SheetName, "C", "E", 20) // names
	_ = f.SetColWidth(SheetName, "H", "H", 14) // birth date
	_ = f.SetColWidth(SheetName, "I", "I", 40) // address
	_ = f.SetColWidth(SheetName, "J", "K", 24) // contact

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.xlsx.ok",
		"subject_id", subjectID,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
