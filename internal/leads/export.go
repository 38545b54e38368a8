package leads

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportSheet names the worksheet written by Export.
const ExportSheet = "Leads"

var exportHeader = []any{"ID", "Created", "Channel", "Name", "Company", "Role", "Use case", "Notified"}

// Export writes every lead to w as an xlsx workbook and returns the number of rows written.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	leads, err := s.repo.ListLeads(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leads: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return 0, fmt.Errorf("name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(ExportSheet, "A1", "H1", header); err != nil {
		return 0, fmt.Errorf("style header: %w", err)
	}

	for i, lead := range leads {
		notified := ""
		if lead.NotifiedAt != nil {
			notified = lead.NotifiedAt.UTC().Format(time.RFC3339)
		}

		row := []any{
			lead.ID,
			lead.CreatedAt.UTC().Format(time.RFC3339),
			lead.Channel,
			lead.Name,
			lead.Company,
			lead.Role,
			lead.UseCase,
			notified,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ExportSheet, "B", "G", 22); err != nil {
		return 0, fmt.Errorf("column width: %w", err)
	}
	if err := f.SetPanes(ExportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}

	return len(leads), nil
}
