// Package export renders an interviewer's bookings as an Excel workbook
// for download from the dashboard.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"slotbook/internal/models"
)

const sheetName = "Bookings"

var columns = []string{"Reference", "Event", "Candidate", "Email", "Start", "End", "Status", "Notes"}

// WriteBookings writes one sheet with a bold header row and one row per
// booking. eventTitles maps event type IDs to their display titles.
func WriteBookings(w io.Writer, bookings []models.Booking, eventTitles map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", endCell, style)
	}

	for i, b := range bookings {
		row := []any{
			b.Reference,
			eventTitles[b.EventTypeID],
			b.CandidateName,
			b.CandidateEmail,
			b.StartTime.Format("2006-01-02 15:04"),
			b.EndTime.Format("2006-01-02 15:04"),
			b.Status,
			b.Notes,
		}
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
