package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cars (
		car_id BIGSERIAL PRIMARY KEY,
		model VARCHAR(100) NOT NULL,
		registration_number VARCHAR(20) NOT NULL UNIQUE,
		daily_rental_rate NUMERIC(10, 2) NOT NULL CHECK (daily_rental_rate > 0),
		availability VARCHAR(20) NOT NULL DEFAULT 'Available'
	)`,

	// customers are provisioned outside this service
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		phone_number VARCHAR(20) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers (customer_id),
		car_id BIGINT NOT NULL REFERENCES cars (car_id),
		booking_date DATE NOT NULL,
		return_date DATE NOT NULL,
		total_cost NUMERIC(14, 2),
		CONSTRAINT bookings_dates_check CHECK (return_date >= booking_date)
	)`,

	`CREATE INDEX IF NOT EXISTS bookings_car_id_idx ON bookings (car_id)`,
}

// EnsureSchema creates the rental tables when they are missing.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	const op = "storage.postgres.EnsureSchema"

	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
