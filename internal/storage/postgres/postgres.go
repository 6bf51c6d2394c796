package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carRental/internal/config"
	"carRental/internal/models"
	"carRental/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLSTATE classes the storage maps onto domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	classDataException = "22"
)

type Storage struct {
	DB *sqlx.DB
}

func InitDB(ctx context.Context, dbCfg *config.Database) (*Storage, error) {
	const op = "storage.postgres.InitDB"

	db, err := sqlx.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to the database: %w", op, err)
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	if err = waitForDB(ctx, db, dbCfg.ConnectAttempts, dbCfg.ConnectBackoff); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to connect to the database: %w", op, err)
	}

	return New(db), nil
}

// waitForDB pings until the server answers, the attempts run out or ctx is done.
func waitForDB(ctx context.Context, db *sqlx.DB, attempts int, backoff time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return err
}

func New(db *sqlx.DB) *Storage {
	return &Storage{DB: db}
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) GetAllCars(ctx context.Context) ([]models.Car, error) {
	const op = "storage.postgres.GetAllCars"

	query := `
		SELECT car_id, model, registration_number, daily_rental_rate, availability
		FROM cars
		ORDER BY car_id`

	cars := []models.Car{}
	if err := s.DB.SelectContext(ctx, &cars, query); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cars, nil
}

func (s *Storage) SaveCar(ctx context.Context, car models.NewCar) (int64, error) {
	const op = "storage.postgres.SaveCar"

	query := `
		INSERT INTO cars (model, registration_number, daily_rental_rate, availability)
		VALUES ($1, $2, $3, $4)
		RETURNING car_id`

	var id int64
	err := s.DB.QueryRowxContext(ctx, query,
		car.Model,
		car.RegistrationNumber,
		car.DailyRentalRate,
		models.AvailabilityAvailable,
	).Scan(&id)
	if err != nil {
		switch {
		case hasCode(err, codeUniqueViolation):
			return 0, fmt.Errorf("%s: %w", op, storage.ErrCarExists)
		case hasClass(err, classDataException):
			return 0, fmt.Errorf("%s: %w: %w", op, storage.ErrInvalidInput, err)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateCarAvailability overwrites the availability of a car regardless of
// its current value or of any open booking.
func (s *Storage) UpdateCarAvailability(ctx context.Context, carID int64, availability string) error {
	const op = "storage.postgres.UpdateCarAvailability"

	query := `
		UPDATE cars
		SET availability = $1
		WHERE car_id = $2`

	res, err := s.DB.ExecContext(ctx, query, availability, carID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	return nil
}

func (s *Storage) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	const op = "storage.postgres.GetAllCustomers"

	query := `
		SELECT customer_id, name, phone_number, email
		FROM customers
		ORDER BY customer_id`

	customers := []models.Customer{}
	if err := s.DB.SelectContext(ctx, &customers, query); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return customers, nil
}

func (s *Storage) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	const op = "storage.postgres.GetAllBookings"

	query := `
		SELECT booking_id, customer_id, car_id,
			to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
			to_char(return_date, 'YYYY-MM-DD') AS return_date,
			total_cost
		FROM bookings
		ORDER BY booking_id`

	bookings := []models.Booking{}
	if err := s.DB.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// BookCar reserves a car for a customer. The car row stays locked from the
// availability check until commit, so concurrent bookings of the same car
// are serialised and only the first one sees it as available.
func (s *Storage) BookCar(ctx context.Context, booking models.NewBooking) (models.BookingResult, error) {
	const op = "storage.postgres.BookCar"

	var result models.BookingResult

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.BookingResult{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var availability string
	lockQuery := `
		SELECT availability
		FROM cars
		WHERE car_id = $1
		FOR UPDATE`

	err = tx.QueryRowxContext(ctx, lockQuery, booking.CarID).Scan(&availability)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingResult{}, fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
		}
		return models.BookingResult{}, fmt.Errorf("%s: failed to check availability: %w", op, err)
	}

	if availability != models.AvailabilityAvailable {
		return models.BookingResult{}, fmt.Errorf("%s: %w", op, storage.ErrCarNotAvailable)
	}

	insertQuery := `
		INSERT INTO bookings (customer_id, car_id, booking_date, return_date, total_cost)
		VALUES ($1, $2, $3, $4, NULL)
		RETURNING booking_id`

	err = tx.QueryRowxContext(ctx, insertQuery,
		booking.CustomerID,
		booking.CarID,
		booking.BookingDate.Format(models.DateLayout),
		booking.ReturnDate.Format(models.DateLayout),
	).Scan(&result.ID)
	if err != nil {
		switch {
		case hasCode(err, codeForeignKeyViolation):
			return models.BookingResult{}, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
		case hasCode(err, codeCheckViolation):
			return models.BookingResult{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidDateRange)
		case hasClass(err, classDataException):
			return models.BookingResult{}, fmt.Errorf("%s: %w: %w", op, storage.ErrInvalidInput, err)
		}
		return models.BookingResult{}, fmt.Errorf("%s: failed to create booking: %w", op, err)
	}

	updateCarQuery := `
		UPDATE cars
		SET availability = $1
		WHERE car_id = $2`

	if _, err = tx.ExecContext(ctx, updateCarQuery, models.AvailabilityBooked, booking.CarID); err != nil {
		return models.BookingResult{}, fmt.Errorf("%s: failed to update car availability: %w", op, err)
	}

	costQuery := `
		UPDATE bookings AS b
		SET total_cost = c.daily_rental_rate * (b.return_date - b.booking_date)
		FROM cars AS c
		WHERE c.car_id = b.car_id AND b.booking_id = $1
		RETURNING b.total_cost`

	if err = tx.QueryRowxContext(ctx, costQuery, result.ID).Scan(&result.TotalCost); err != nil {
		if hasClass(err, classDataException) {
			return models.BookingResult{}, fmt.Errorf("%s: %w: %w", op, storage.ErrInvalidInput, err)
		}
		return models.BookingResult{}, fmt.Errorf("%s: failed to calculate total cost: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.BookingResult{}, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return result, nil
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}

	return false
}

// hasClass reports whether err is a PostgreSQL error of the given SQLSTATE class.
func hasClass(err error, class pq.ErrorClass) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == class
	}

	return false
}
