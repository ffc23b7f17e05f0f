package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Channels"

var exportHeaders = []string{
	"Month", "Channel", "Cost", "Leads", "Jobs", "Revenue", "Close %", "Cost per Lead", "ROI %",
}

// ExportFilename names the workbook of a month
func ExportFilename(month string) string {
	if month == "" {
		return "channels-report.xlsx"
	}
	return fmt.Sprintf("channels-report-%s.xlsx", month)
}

// Export renders a month of channel rows and a totals line as an xlsx workbook
func (s *Service) Export(ctx context.Context, month string) ([]byte, error) {
	rows, err := s.Channels(ctx, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rows {
		row := i + 2
		values := []any{r.Month, r.Channel, r.Cost, r.Leads, r.Jobs, r.Revenue, r.CloseRate, r.CostPerLead, r.ROI}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	totals := ComputeTotals(rows)
	totalRow := len(rows) + 2
	totalValues := []any{"Total", "", totals.Cost, totals.Leads, totals.Jobs, totals.Revenue, totals.CloseRate, CostPerLead(totals.Cost, totals.Leads), totals.ROI}
	for col, v := range totalValues {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		f.SetCellValue(sheetName, cell, v)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
