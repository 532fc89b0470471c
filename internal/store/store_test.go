package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millbook/internal/model"
	"millbook/internal/timeline"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertBookingAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.Booking{Day: timeline.Monday, Name: "Alice", Bags: 2, StartTime: 540, EndTime: 570}
	require.NoError(t, s.InsertBooking(ctx, first))
	assert.Positive(t, first.ID)

	second := &model.Booking{Day: timeline.Monday, Name: "Bob", Bags: 1, StartTime: 600, EndTime: 615}
	require.NoError(t, s.InsertBooking(ctx, second))
	assert.Greater(t, second.ID, first.ID, "ids are monotonic")
}

func TestBookingsForOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, start := range []int{900, 540, 720} {
		b := &model.Booking{Day: timeline.Tuesday, Name: "X", Bags: 1, StartTime: start, EndTime: start + 15}
		require.NoError(t, s.InsertBooking(ctx, b))
	}
	other := &model.Booking{Day: timeline.Wednesday, Name: "Y", Bags: 1, StartTime: 540, EndTime: 555}
	require.NoError(t, s.InsertBooking(ctx, other))

	got, err := s.BookingsFor(ctx, timeline.Tuesday)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{540, 720, 900}, []int{got[0].StartTime, got[1].StartTime, got[2].StartTime})
}

func TestOverlapQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &model.Booking{Day: timeline.Monday, Name: "Alice", Bags: 2, StartTime: 540, EndTime: 570}
	require.NoError(t, s.InsertBooking(ctx, b))

	tests := []struct {
		name string
		iv   model.Interval
		want bool
	}{
		{"inside", model.Interval{Day: timeline.Monday, Start: 550, End: 565}, true},
		{"straddling", model.Interval{Day: timeline.Monday, Start: 560, End: 600}, true},
		{"touching end", model.Interval{Day: timeline.Monday, Start: 570, End: 600}, false},
		{"touching start", model.Interval{Day: timeline.Monday, Start: 525, End: 540}, false},
		{"different day", model.Interval{Day: timeline.Tuesday, Start: 540, End: 570}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.AnyBookingOverlaps(ctx, tt.iv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	blockers, err := s.OverlappingBookings(ctx, model.Interval{Day: timeline.Monday, Start: 540, End: 600})
	require.NoError(t, err)
	require.Len(t, blockers, 1)
	assert.Equal(t, b.ID, blockers[0].ID)

	blockers, err = s.OverlappingBookings(ctx, model.Interval{Day: timeline.Monday, Start: 570, End: 600})
	require.NoError(t, err)
	assert.Empty(t, blockers)
}

func TestClosureLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &model.Closure{Day: timeline.Friday, StartTime: 600, EndTime: 660, Reason: "maintenance"}
	require.NoError(t, s.InsertClosure(ctx, c))
	assert.Positive(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.ClosuresFor(ctx, timeline.Friday)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "maintenance", got[0].Reason)

	overlaps, err := s.AnyClosureOverlaps(ctx, model.Interval{Day: timeline.Friday, Start: 615, End: 630})
	require.NoError(t, err)
	assert.True(t, overlaps)

	require.NoError(t, s.DeleteClosure(ctx, c.ID))
	got, err = s.ClosuresFor(ctx, timeline.Friday)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &model.Booking{Day: timeline.Monday, Name: "Alice", Bags: 1, StartTime: 540, EndTime: 555}
	require.NoError(t, s.InsertBooking(ctx, b))

	require.NoError(t, s.DeleteBooking(ctx, b.ID))
	require.NoError(t, s.DeleteBooking(ctx, b.ID))
	require.NoError(t, s.DeleteBooking(ctx, 99999))
	require.NoError(t, s.DeleteClosure(ctx, 99999))
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBooking(ctx, &model.Booking{Day: timeline.Monday, Name: "A", Bags: 1, StartTime: 540, EndTime: 555}))
	require.NoError(t, s.InsertClosure(ctx, &model.Closure{Day: timeline.Tuesday, StartTime: 600, EndTime: 660}))

	require.NoError(t, s.ClearAll(ctx))

	bookings, err := s.AllBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	closures, err := s.AllClosures(ctx)
	require.NoError(t, err)
	assert.Empty(t, closures)

	// Clearing an already-empty store succeeds.
	require.NoError(t, s.ClearAll(ctx))
}
