package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Water Chiller"

type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) Render(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if string(doc.Orientation) == string(Landscape) {
		orientation := "landscape"
		size := 9 // A4
		if err := f.SetPageLayout(sheetName, &excelize.PageLayoutOptions{
			Orientation: &orientation,
			Size:        &size,
		}); err != nil {
			return nil, fmt.Errorf("failed to set page layout: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	row := 1
	if err := f.SetCellValue(sheetName, "A1", doc.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}
	row += 2

	for _, m := range doc.Meta {
		if err := f.SetSheetRow(sheetName, cell(1, row), &[]any{m.Label, m.Value}); err != nil {
			return nil, fmt.Errorf("failed to write meta row: %w", err)
		}
		row++
	}
	row++

	headerRow := row
	for i, c := range doc.Columns {
		name := cell(i+1, row)
		if err := f.SetCellValue(sheetName, name, c.Title); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", name, err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		// roughly 2mm per character width unit
		if err := f.SetColWidth(sheetName, col, col, c.Width/2); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if len(doc.Columns) > 0 {
		if err := f.SetCellStyle(sheetName, cell(1, row), cell(len(doc.Columns), row), headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}
	row++

	for _, r := range doc.Rows {
		values := make([]any, len(r))
		for i, v := range r {
			values[i] = v
		}
		if err := f.SetSheetRow(sheetName, cell(1, row), &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: headerRow, TopLeftCell: cell(1, headerRow+1), ActivePane: "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	if doc.Notes != "" {
		row++
		if err := f.SetSheetRow(sheetName, cell(1, row), &[]any{"Notes", doc.Notes}); err != nil {
			return nil, err
		}
		row++
	}
	row++
	for _, s := range doc.Signatures {
		if err := f.SetSheetRow(sheetName, cell(1, row), &[]any{s.Label, s.Value}); err != nil {
			return nil, err
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
