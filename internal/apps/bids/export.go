package bids

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bids"

var exportHeaders = []interface{}{"Bid ID", "Farm ID", "Company", "Amount", "Status", "Bid Date", "Updated At"}

// WriteWorkbook renders bids as an XLSX workbook.
func WriteWorkbook(list []Bid) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBD9"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "G1", headerStyle); err != nil {
		return nil, err
	}

	for i, b := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			b.ID,
			b.FarmID,
			b.CompanyUsername,
			b.BidAmount,
			string(b.Status),
			b.BidDate.UTC().Format(time.RFC3339),
			b.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "G", 18); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func exportFilename(now time.Time) string {
	return fmt.Sprintf("bids_%s.xlsx", now.Format("20060102_150405"))
}
