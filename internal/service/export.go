package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"agro-advisor/internal/domain"
)

const cropSheet = "Crop History"

var cropHeader = []any{"Crop", "Planted", "Harvested", "Yield (t)", "Notes"}

// CropHistoryXLSX renders records as a single-sheet workbook.
func CropHistoryXLSX(recs []domain.CropRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cropSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(cropSheet, "A1", &cropHeader); err != nil {
		return nil, err
	}
	for i, r := range recs {
		row := []any{r.Crop, r.PlantedDate, r.HarvestedDate, r.YieldAmount, r.Notes}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(cropSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
