// Package repository provides the booking history data access layer.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRecord is one booking attempt, successful or not.
type BookingRecord struct {
	ID        int64
	Leader    string
	Members   []string
	SlotStart time.Time
	SlotEnd   time.Time
	ProductID int64
	DryRun    bool
	Success   bool
	Message   string
	CreatedAt time.Time
}

// BookingRepository stores booking outcomes in PostgreSQL.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Record inserts a booking outcome.
func (r *BookingRepository) Record(ctx context.Context, rec BookingRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (leader, members, slot_start, slot_end, product_id, dry_run, success, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.Leader, rec.Members, rec.SlotStart, rec.SlotEnd, rec.ProductID, rec.DryRun, rec.Success, rec.Message)
	if err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

// Recent returns the most recent booking records, newest first.
func (r *BookingRepository) Recent(ctx context.Context, limit int) ([]BookingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, leader, members, slot_start, slot_end, product_id, dry_run, success, message, created_at
		FROM bookings
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var records []BookingRecord
	for rows.Next() {
		var rec BookingRecord
		err := rows.Scan(&rec.ID, &rec.Leader, &rec.Members, &rec.SlotStart, &rec.SlotEnd,
			&rec.ProductID, &rec.DryRun, &rec.Success, &rec.Message, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return records, nil
}

// Migrate creates the bookings table.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id BIGSERIAL PRIMARY KEY,
			leader VARCHAR(255) NOT NULL,
			members TEXT[] NOT NULL DEFAULT '{}',
			slot_start TIMESTAMPTZ,
			slot_end TIMESTAMPTZ,
			product_id BIGINT NOT NULL DEFAULT 0,
			dry_run BOOLEAN NOT NULL DEFAULT FALSE,
			success BOOLEAN NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_bookings_created ON bookings(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}
	return nil
}
