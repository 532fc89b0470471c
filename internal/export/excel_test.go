package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millbook/internal/model"
	"millbook/internal/timeline"
)

func TestWorkbookLayout(t *testing.T) {
	bookings := []model.Booking{
		{ID: 1, Day: timeline.Monday, Name: "Alice", Bags: 2, StartTime: 540, EndTime: 570},
		{ID: 2, Day: timeline.Friday, Name: "Bob", Bags: 1, StartTime: 780, EndTime: 795},
	}
	closures := []model.Closure{
		{ID: 3, Day: timeline.Sunday, StartTime: 600, EndTime: 660, Reason: "maintenance",
			CreatedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
	}

	f, err := Workbook(bookings, closures)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Bookings", "Closures"}, f.GetSheetList())

	header, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	name, err := f.GetCellValue("Bookings", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	start, err := f.GetCellValue("Bookings", "E3")
	require.NoError(t, err)
	assert.Equal(t, "1:00 PM", start)

	reason, err := f.GetCellValue("Closures", "E2")
	require.NoError(t, err)
	assert.Equal(t, "maintenance", reason)
}

func TestWorkbookEmptyTimetable(t *testing.T) {
	f, err := Workbook(nil, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Bookings", "Closures"}, f.GetSheetList())

	// Only the header row exists.
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
