package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	tableSheet   = "Data"
)

// XLSXExporter renders a report as a workbook with a summary sheet and a data sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render creates the workbook bytes.
func (e *XLSXExporter) Render(report Report) ([]byte, error) {
	if len(report.Table.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	row := 1
	if report.Title != "" {
		if err := f.SetCellValue(summarySheet, "A1", report.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		row = 3
	}
	for _, field := range report.Summary {
		if err := f.SetCellValue(summarySheet, "A"+strconv.Itoa(row), field.Label); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellValue(summarySheet, "B"+strconv.Itoa(row), field.Value); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		row++
	}

	index, err := f.NewSheet(tableSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	for i, header := range report.Table.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(tableSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for r, data := range report.Table.Rows {
		for c, value := range report.Table.record(data) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(tableSheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
