package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// ExtractSpreadsheet walks every sheet in workbook order. Each non-empty cell
// is written followed by a space and each row is terminated by a newline.
func ExtractSpreadsheet(data []byte, kind domain.SpreadsheetKind) (string, error) {
	switch kind {
	case domain.SpreadsheetXLSX:
		return extractXLSX(data)
	case domain.SpreadsheetXLS:
		return extractXLS(data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract spreadsheet", fmt.Errorf("kind %d", kind))
	}
}

func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open xlsx", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "read xlsx sheet "+sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				writeCell(&b, cell)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func extractXLS(data []byte) (text string, err error) {
	// The legacy decoder panics on truncated compound documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrExtraction, "open xls", fmt.Errorf("malformed workbook: %v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open xls", err)
	}

	var b strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		if sheet.MaxRow == 0 && xlsRow(sheet, 0) == nil {
			continue
		}
		for r := 0; r <= int(sheet.MaxRow); r++ {
			if row := xlsRow(sheet, r); row != nil {
				for c := row.FirstCol(); c < row.LastCol(); c++ {
					writeCell(&b, row.Col(c))
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// xlsRow returns nil for rows without a record; WorkSheet.Row dereferences
// the missing entry.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func writeCell(b *strings.Builder, value string) {
	if value == "" {
		return
	}
	b.WriteString(value)
	b.WriteString(" ")
}
