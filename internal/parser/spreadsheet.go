package parser

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"prognosis-rag/internal/models"
)

// extractXLSX emits one table section per sheet. Lab-result spreadsheets
// are tabular by nature, so the chunker passes them through whole.
func extractXLSX(filePath string) ([]models.Section, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var sections []models.Section
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:   models.SectionTable,
			Content: text.String(),
			PageNum: sheetNum + 1,
		})
	}
	return sections, nil
}

// extractODS does the same for OpenDocument spreadsheets.
func extractODS(filePath string) ([]models.Section, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sections []models.Section
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		sections = append(sections, models.Section{
			Title:   models.SectionTable,
			Content: text.String(),
			PageNum: sheetNum + 1,
		})
	}
	return sections, nil
}
