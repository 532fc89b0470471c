// Package export renders the current timetable as an Excel workbook for
// the admin.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"millbook/internal/model"
	"millbook/internal/timeline"
)

// Workbook builds an xlsx file with one sheet of bookings and one of
// closures, times rendered as clock labels.
func Workbook(bookings []model.Booking, closures []model.Closure) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeBookings(f, bookings); err != nil {
		return nil, err
	}
	if err := writeClosures(f, closures); err != nil {
		return nil, err
	}
	return f, nil
}

func writeBookings(f *excelize.File, bookings []model.Booking) error {
	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	if err := writeRow(f, sheet, 1, []interface{}{"ID", "Day", "Name", "Bags", "Start", "End"}); err != nil {
		return err
	}
	boldHeader(f, sheet, 6)

	for i, b := range bookings {
		row := []interface{}{
			b.ID, string(b.Day), b.Name, b.Bags,
			timeline.MinutesToLabel(b.StartTime),
			timeline.MinutesToLabel(b.EndTime),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeClosures(f *excelize.File, closures []model.Closure) error {
	const sheet = "Closures"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, []interface{}{"ID", "Day", "Start", "End", "Reason", "Created"}); err != nil {
		return err
	}
	boldHeader(f, sheet, 6)

	for i, c := range closures {
		row := []interface{}{
			c.ID, string(c.Day),
			timeline.MinutesToLabel(c.StartTime),
			timeline.MinutesToLabel(c.EndTime),
			c.Reason,
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func boldHeader(f *excelize.File, sheet string, columns int) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return
	}
	startCell, _ := excelize.CoordinatesToCellName(1, 1)
	endCell, _ := excelize.CoordinatesToCellName(columns, 1)
	_ = f.SetCellStyle(sheet, startCell, endCell, style)
}
