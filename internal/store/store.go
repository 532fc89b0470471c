// Package store persists bookings and closures in SQLite. The store is a
// dumb ledger: it assigns ids and answers overlap queries, but invariant
// checks belong to the scheduling engine.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"millbook/internal/model"
	"millbook/internal/timeline"
)

// Store wraps sql.DB for the slot book.
type Store struct {
	*sql.DB
}

// New opens the database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Store{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day TEXT NOT NULL,
			name TEXT NOT NULL,
			bags INTEGER NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS closures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_day_times ON bookings(day, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_closures_day_times ON closures(day, start_time, end_time)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// InsertBooking appends a booking and assigns its id.
func (s *Store) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := s.ExecContext(ctx,
		`INSERT INTO bookings (day, name, bags, start_time, end_time) VALUES (?, ?, ?, ?, ?)`,
		b.Day, b.Name, b.Bags, b.StartTime, b.EndTime,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}
	return nil
}

// InsertClosure appends a closure and assigns its id.
func (s *Store) InsertClosure(ctx context.Context, c *model.Closure) error {
	res, err := s.ExecContext(ctx,
		`INSERT INTO closures (day, start_time, end_time, reason) VALUES (?, ?, ?, ?)`,
		c.Day, c.StartTime, c.EndTime, c.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert closure: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("closure id: %w", err)
	}
	if err := s.QueryRowContext(ctx,
		`SELECT created_at FROM closures WHERE id = ?`, c.ID,
	).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("closure created_at: %w", err)
	}
	return nil
}

// DeleteBooking removes a booking by id. Absent ids are a no-op.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	return nil
}

// DeleteClosure removes a closure by id. Absent ids are a no-op.
func (s *Store) DeleteClosure(ctx context.Context, id int64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM closures WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete closure %d: %w", id, err)
	}
	return nil
}

// BookingsFor returns the day's bookings ordered by start time.
func (s *Store) BookingsFor(ctx context.Context, day timeline.Day) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT id, day, name, bags, start_time, end_time FROM bookings WHERE day = ? ORDER BY start_time`, day)
}

// AllBookings returns every booking ordered by day and start time.
func (s *Store) AllBookings(ctx context.Context) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT id, day, name, bags, start_time, end_time FROM bookings ORDER BY day, start_time`)
}

// OverlappingBookings returns the bookings sharing minutes with the
// interval, ordered by start time.
func (s *Store) OverlappingBookings(ctx context.Context, iv model.Interval) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT id, day, name, bags, start_time, end_time FROM bookings
		 WHERE day = ? AND start_time < ? AND end_time > ? ORDER BY start_time`,
		iv.Day, iv.End, iv.Start)
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Day, &b.Name, &b.Bags, &b.StartTime, &b.EndTime); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ClosuresFor returns the day's closures ordered by start time.
func (s *Store) ClosuresFor(ctx context.Context, day timeline.Day) ([]model.Closure, error) {
	return s.queryClosures(ctx,
		`SELECT id, day, start_time, end_time, reason, created_at FROM closures WHERE day = ? ORDER BY start_time`, day)
}

// AllClosures returns every closure ordered by day and start time.
func (s *Store) AllClosures(ctx context.Context) ([]model.Closure, error) {
	return s.queryClosures(ctx,
		`SELECT id, day, start_time, end_time, reason, created_at FROM closures ORDER BY day, start_time`)
}

func (s *Store) queryClosures(ctx context.Context, query string, args ...any) ([]model.Closure, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query closures: %w", err)
	}
	defer rows.Close()

	var closures []model.Closure
	for rows.Next() {
		var c model.Closure
		var reason sql.NullString
		if err := rows.Scan(&c.ID, &c.Day, &c.StartTime, &c.EndTime, &reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan closure: %w", err)
		}
		c.Reason = reason.String
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

// AnyBookingOverlaps reports whether any booking shares minutes with the
// interval. Half-open semantics: touching endpoints do not overlap.
func (s *Store) AnyBookingOverlaps(ctx context.Context, iv model.Interval) (bool, error) {
	return s.anyOverlap(ctx, "bookings", iv)
}

// AnyClosureOverlaps reports whether any closure shares minutes with the
// interval.
func (s *Store) AnyClosureOverlaps(ctx context.Context, iv model.Interval) (bool, error) {
	return s.anyOverlap(ctx, "closures", iv)
}

func (s *Store) anyOverlap(ctx context.Context, table string, iv model.Interval) (bool, error) {
	var count int
	err := s.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE day = ? AND start_time < ? AND end_time > ?`, table),
		iv.Day, iv.End, iv.Start,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check %s overlap: %w", table, err)
	}
	return count > 0, nil
}

// ClearAll empties both tables for the daily reset.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"bookings", "closures"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
