package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"orderlens/pkg/contracts/domain"
)

// ParseXLSX parses an Excel order export. The first sheet must carry the
// same column schema as the CSV exports; cell values arrive as strings and
// go through the same row parsing.
func ParseXLSX(path, sourceFile string) ([]domain.OrderLine, domain.Capabilities, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.Capabilities{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Capabilities{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.Capabilities{}, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return parseRecords(rows, sourceFile)
}
