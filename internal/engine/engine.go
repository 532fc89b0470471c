// Package engine enforces the timetable invariants at the moment of
// mutation and computes slot availability.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"millbook/internal/events"
	"millbook/internal/metrics"
	"millbook/internal/model"
	"millbook/internal/store"
	"millbook/internal/timeline"
)

// Slot is a bookable run of time offered to a customer.
type Slot struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Display string `json:"display"`
}

// Overview is the full display state: every booking and closure.
type Overview struct {
	Bookings []model.Booking `json:"bookings"`
	Closures []model.Closure `json:"closedSlots"`
}

// Engine validates and commits timetable mutations. A single mutex wraps
// every check-then-insert sequence so two concurrent requests for
// overlapping intervals cannot both pass their overlap check; reads take
// the same lock so they never observe a half-committed mutation. Event
// publishing always happens after the lock is released, so a slow
// subscriber can never stall the timetable.
type Engine struct {
	store  *store.Store
	bus    *events.Bus
	logger zerolog.Logger
	mu     sync.Mutex
}

// New constructs an engine over the given store and event bus.
func New(st *store.Store, bus *events.Bus, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  st,
		bus:    bus,
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

// FindAvailableSlots returns every start time at which bags×15 minutes fit
// inside the operating window without touching a booking or closure.
// An empty result is valid and means no availability.
func (e *Engine) FindAvailableSlots(ctx context.Context, day string, bags int) ([]Slot, error) {
	d, err := timeline.ParseDay(day)
	if err != nil {
		return nil, validationErr("day", err.Error())
	}
	if bags < 1 {
		return nil, validationErr("bags", "must be at least 1")
	}
	if bags > timeline.MaxBags {
		// More than the window holds can never fit anywhere.
		return []Slot{}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bookings, err := e.store.BookingsFor(ctx, d)
	if err != nil {
		return nil, err
	}
	closures, err := e.store.ClosuresFor(ctx, d)
	if err != nil {
		return nil, err
	}

	duration := bags * timeline.MinutesPerBag
	slots := []Slot{}
	for _, start := range timeline.CandidateStarts(duration) {
		iv := model.Interval{Day: d, Start: start, End: start + duration}
		if overlapsBooking(iv, bookings) || overlapsClosure(iv, closures) {
			continue
		}
		slots = append(slots, Slot{
			Start:   iv.Start,
			End:     iv.End,
			Display: timeline.RangeLabel(iv.Start, iv.End),
		})
	}
	return slots, nil
}

func overlapsBooking(iv model.Interval, bookings []model.Booking) bool {
	for _, b := range bookings {
		if iv.Overlaps(b.Interval()) {
			return true
		}
	}
	return false
}

func overlapsClosure(iv model.Interval, closures []model.Closure) bool {
	for _, c := range closures {
		if iv.Overlaps(c.Interval()) {
			return true
		}
	}
	return false
}

// Book validates and commits a customer reservation, then signals viewers.
func (e *Engine) Book(ctx context.Context, day, name string, bags, startTime int) (*model.Booking, error) {
	d, err := timeline.ParseDay(day)
	if err != nil {
		metrics.IncBookingRejected("validation")
		return nil, validationErr("day", err.Error())
	}
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.IncBookingRejected("validation")
		return nil, validationErr("name", "must not be empty")
	}
	if bags < 1 {
		metrics.IncBookingRejected("validation")
		return nil, validationErr("bags", "must be at least 1")
	}
	if bags > timeline.MaxBags {
		// Capping before the arithmetic keeps bags*MinutesPerBag from
		// wrapping on absurd inputs.
		metrics.IncBookingRejected("validation")
		return nil, validationErr("bags", "exceeds operating window capacity")
	}
	endTime := startTime + bags*timeline.MinutesPerBag
	if startTime < timeline.OpenMinute || endTime > timeline.CloseMinute {
		metrics.IncBookingRejected("validation")
		return nil, validationErr("start_time", "booking falls outside operating hours")
	}

	booking, err := e.commitBooking(ctx, model.Interval{Day: d, Start: startTime, End: endTime}, name, bags)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	e.logger.Info().
		Int64("id", booking.ID).
		Str("day", string(d)).
		Str("name", name).
		Int("bags", bags).
		Str("slot", timeline.RangeLabel(startTime, endTime)).
		Msg("booking created")

	e.bus.Publish(events.TopicUpdate)
	return booking, nil
}

func (e *Engine) commitBooking(ctx context.Context, iv model.Interval, name string, bags int) (*model.Booking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	closed, err := e.store.AnyClosureOverlaps(ctx, iv)
	if err != nil {
		return nil, err
	}
	if closed {
		metrics.IncBookingRejected("closed")
		return nil, ErrSlotClosed
	}

	conflict, err := e.store.AnyBookingOverlaps(ctx, iv)
	if err != nil {
		return nil, err
	}
	if conflict {
		metrics.IncBookingRejected("conflict")
		return nil, &ConflictError{}
	}

	booking := &model.Booking{Day: iv.Day, Name: name, Bags: bags, StartTime: iv.Start, EndTime: iv.End}
	if err := e.store.InsertBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// CloseSlot blocks a range for admin maintenance. It never cancels
// bookings: overlapping bookings are returned inside a ConflictError so
// the admin can resolve them first. Closures may overlap each other.
func (e *Engine) CloseSlot(ctx context.Context, day string, startTime, endTime int, reason string) (*model.Closure, error) {
	d, err := timeline.ParseDay(day)
	if err != nil {
		return nil, validationErr("day", err.Error())
	}
	if endTime <= startTime {
		return nil, validationErr("end_time", "must be after start time")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Closed by admin"
	}

	closure, err := e.commitClosure(ctx, model.Interval{Day: d, Start: startTime, End: endTime}, reason)
	if err != nil {
		return nil, err
	}

	metrics.IncClosureCreated()
	e.logger.Info().
		Int64("id", closure.ID).
		Str("day", string(d)).
		Str("slot", timeline.RangeLabel(startTime, endTime)).
		Str("reason", reason).
		Msg("slot range closed")

	e.bus.Publish(events.TopicUpdate)
	e.bus.Publish(events.TopicAdminUpdate)
	return closure, nil
}

func (e *Engine) commitClosure(ctx context.Context, iv model.Interval, reason string) (*model.Closure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	blockers, err := e.store.OverlappingBookings(ctx, iv)
	if err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		return nil, &ConflictError{Bookings: blockers}
	}

	closure := &model.Closure{Day: iv.Day, StartTime: iv.Start, EndTime: iv.End, Reason: reason}
	if err := e.store.InsertClosure(ctx, closure); err != nil {
		return nil, err
	}
	return closure, nil
}

// OpenSlot removes a closure by id. Idempotent: an absent id succeeds.
func (e *Engine) OpenSlot(ctx context.Context, id int64) error {
	e.mu.Lock()
	err := e.store.DeleteClosure(ctx, id)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.logger.Info().Int64("id", id).Msg("slot range reopened")
	e.bus.Publish(events.TopicUpdate)
	e.bus.Publish(events.TopicAdminUpdate)
	return nil
}

// RemoveBooking deletes a booking by id. Idempotent: an absent id succeeds.
func (e *Engine) RemoveBooking(ctx context.Context, id int64) error {
	e.mu.Lock()
	err := e.store.DeleteBooking(ctx, id)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.logger.Info().Int64("id", id).Msg("booking removed")
	e.bus.Publish(events.TopicUpdate)
	e.bus.Publish(events.TopicAdminUpdate)
	return nil
}

// ResetAll clears every booking and closure. Invoked by the daily reset
// scheduler; safe to run against an empty timetable.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	err := e.store.ClearAll(ctx)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	metrics.IncTimetableReset()
	e.logger.Info().Msg("all slots and closures cleared for new day")
	e.bus.Publish(events.TopicUpdate)
	e.bus.Publish(events.TopicAdminUpdate)
	return nil
}

// Overview returns the full display state for all days.
func (e *Engine) Overview(ctx context.Context) (*Overview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bookings, err := e.store.AllBookings(ctx)
	if err != nil {
		return nil, err
	}
	closures, err := e.store.AllClosures(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	if closures == nil {
		closures = []model.Closure{}
	}
	return &Overview{Bookings: bookings, Closures: closures}, nil
}
