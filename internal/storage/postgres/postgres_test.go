package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"carRental/internal/models"
	"carRental/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lockCarSQL      = "SELECT availability FROM cars WHERE car_id = $1 FOR UPDATE"
	insertBookSQL   = "INSERT INTO bookings (customer_id, car_id, booking_date, return_date, total_cost)"
	markBookedSQL   = "UPDATE cars SET availability = $1 WHERE car_id = $2"
	totalCostSQL    = "SET total_cost = c.daily_rental_rate * (b.return_date - b.booking_date)"
	insertCarSQL    = "INSERT INTO cars (model, registration_number, daily_rental_rate, availability)"
	selectCarsSQL   = "SELECT car_id, model, registration_number, daily_rental_rate, availability FROM cars"
	selectCustSQL   = "SELECT customer_id, name, phone_number, email FROM customers"
	selectBookSQL   = "FROM bookings ORDER BY booking_id"
	updateAvailSQL  = "UPDATE cars SET availability = $1 WHERE car_id = $2"
	bookingCarID    = int64(7)
	bookingCustomer = int64(1)
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return New(sqlx.NewDb(db, "postgres")), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func newBooking(t *testing.T) models.NewBooking {
	t.Helper()

	from, err := time.Parse(models.DateLayout, "2024-01-01")
	require.NoError(t, err)
	to, err := time.Parse(models.DateLayout, "2024-01-04")
	require.NoError(t, err)

	return models.NewBooking{
		CustomerID:  bookingCustomer,
		CarID:       bookingCarID,
		BookingDate: from,
		ReturnDate:  to,
	}
}

func TestBookCar(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection reset by peer")

	testCases := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expected    models.BookingResult
		expectedErr error
	}{
		{
			name: "Success",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WithArgs(bookingCustomer, bookingCarID, "2024-01-01", "2024-01-04").
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(10)))
				mock.ExpectExec(q(markBookedSQL)).
					WithArgs("Booked", bookingCarID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(q(totalCostSQL)).
					WithArgs(int64(10)).
					WillReturnRows(sqlmock.NewRows([]string{"total_cost"}).AddRow(120.0))
				mock.ExpectCommit()
			},
			expected: models.BookingResult{ID: 10, TotalCost: 120},
		},
		{
			name: "Car not found",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}))
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrCarNotFound,
		},
		{
			name: "Car already booked",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Booked"))
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrCarNotAvailable,
		},
		{
			name: "Car under admin status",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Maintenance"))
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrCarNotAvailable,
		},
		{
			name: "Unknown customer",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnError(&pq.Error{Code: codeForeignKeyViolation})
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrCustomerNotFound,
		},
		{
			name: "Dates rejected by check constraint",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnError(&pq.Error{Code: codeCheckViolation})
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrInvalidDateRange,
		},
		{
			name: "Date outside the storable range",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WithArgs(bookingCarID).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnError(&pq.Error{Code: "22008", Message: "date/time field value out of range"})
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrInvalidInput,
		},
		{
			name: "Total cost overflows",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(10)))
				mock.ExpectExec(q(markBookedSQL)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(q(totalCostSQL)).
					WillReturnError(&pq.Error{Code: "22003", Message: "numeric field overflow"})
				mock.ExpectRollback()
			},
			expectedErr: storage.ErrInvalidInput,
		},
		{
			name: "Begin fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(dbErr)
			},
			expectedErr: dbErr,
		},
		{
			name: "Availability check fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).WillReturnError(dbErr)
				mock.ExpectRollback()
			},
			expectedErr: dbErr,
		},
		{
			name: "Marking car booked fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(10)))
				mock.ExpectExec(q(markBookedSQL)).WillReturnError(dbErr)
				mock.ExpectRollback()
			},
			expectedErr: dbErr,
		},
		{
			name: "Cost calculation fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(10)))
				mock.ExpectExec(q(markBookedSQL)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(q(totalCostSQL)).WillReturnError(dbErr)
				mock.ExpectRollback()
			},
			expectedErr: dbErr,
		},
		{
			name: "Commit fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(q(lockCarSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"availability"}).AddRow("Available"))
				mock.ExpectQuery(q(insertBookSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(10)))
				mock.ExpectExec(q(markBookedSQL)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(q(totalCostSQL)).
					WillReturnRows(sqlmock.NewRows([]string{"total_cost"}).AddRow(120.0))
				mock.ExpectCommit().WillReturnError(dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newMockStorage(t)
			tc.mockSetup(mock)

			result, err := s.BookCar(context.Background(), newBooking(t))

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, models.BookingResult{}, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSaveCar(t *testing.T) {
	t.Parallel()

	car := models.NewCar{Model: "Civic", RegistrationNumber: "XY123", DailyRentalRate: 40}

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		mock.ExpectQuery(q(insertCarSQL)).
			WithArgs("Civic", "XY123", 40.0, "Available").
			WillReturnRows(sqlmock.NewRows([]string{"car_id"}).AddRow(int64(3)))

		id, err := s.SaveCar(context.Background(), car)
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate registration number", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		mock.ExpectQuery(q(insertCarSQL)).
			WillReturnError(&pq.Error{Code: codeUniqueViolation, Message: "duplicate key value"})

		_, err := s.SaveCar(context.Background(), car)
		assert.ErrorIs(t, err, storage.ErrCarExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rate overflows column", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		mock.ExpectQuery(q(insertCarSQL)).
			WillReturnError(&pq.Error{Code: "22003", Message: "numeric field overflow"})

		_, err := s.SaveCar(context.Background(), car)
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other database error", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStorage(t)
		mock.ExpectQuery(q(insertCarSQL)).
			WillReturnError(&pq.Error{Code: "08006"})

		_, err := s.SaveCar(context.Background(), car)
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrCarExists)
		assert.NotErrorIs(t, err, storage.ErrInvalidInput)
	})
}

func TestUpdateCarAvailability(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectedErr error
		wantErr     bool
	}{
		{
			name: "Success",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(q(updateAvailSQL)).
					WithArgs("Maintenance", int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Car not found",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(q(updateAvailSQL)).
					WithArgs("Maintenance", int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: storage.ErrCarNotFound,
			wantErr:     true,
		},
		{
			name: "Database error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(q(updateAvailSQL)).
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newMockStorage(t)
			tc.mockSetup(mock)

			err := s.UpdateCarAvailability(context.Background(), 5, "Maintenance")
			if tc.wantErr {
				require.Error(t, err)
				if tc.expectedErr != nil {
					assert.ErrorIs(t, err, tc.expectedErr)
				}
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetAllCars(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery(q(selectCarsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"car_id", "model", "registration_number", "daily_rental_rate", "availability"}).
			AddRow(int64(1), "Civic", "XY123", 40.0, "Available").
			AddRow(int64(2), "Golf", "AB987", 55.5, "Booked"))

	cars, err := s.GetAllCars(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.Car{
		{ID: 1, Model: "Civic", RegistrationNumber: "XY123", DailyRentalRate: 40, Availability: "Available"},
		{ID: 2, Model: "Golf", RegistrationNumber: "AB987", DailyRentalRate: 55.5, Availability: "Booked"},
	}, cars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllCarsEmpty(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery(q(selectCarsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"car_id", "model", "registration_number", "daily_rental_rate", "availability"}))

	cars, err := s.GetAllCars(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cars)
	assert.Empty(t, cars)
}

func TestGetAllCarsError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery(q(selectCarsSQL)).WillReturnError(errors.New("database error"))

	cars, err := s.GetAllCars(context.Background())
	require.Error(t, err)
	assert.Nil(t, cars)
	assert.Contains(t, err.Error(), "storage.postgres.GetAllCars")
}

func TestGetAllCustomers(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery(q(selectCustSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "name", "phone_number", "email"}).
			AddRow(int64(1), "Ada", "555-0100", "ada@example.com"))

	customers, err := s.GetAllCustomers(context.Background())
	require.NoError(t, err)

	require.Len(t, customers, 1)
	assert.Equal(t, models.Customer{ID: 1, Name: "Ada", PhoneNumber: "555-0100", Email: "ada@example.com"}, customers[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllBookings(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery(q(selectBookSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "customer_id", "car_id", "booking_date", "return_date", "total_cost"}).
			AddRow(int64(1), int64(1), int64(7), "2024-01-01", "2024-01-04", 120.0).
			AddRow(int64(2), int64(2), int64(8), "2024-02-01", "2024-02-02", nil))

	bookings, err := s.GetAllBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	require.NotNil(t, bookings[0].TotalCost)
	assert.Equal(t, 120.0, *bookings[0].TotalCost)
	assert.Equal(t, "2024-01-01", bookings[0].BookingDate)
	assert.Equal(t, "2024-01-04", bookings[0].ReturnDate)
	assert.Nil(t, bookings[1].TotalCost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	for _, stmt := range schema {
		mock.ExpectExec(q(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectExec(q(schema[0])).WillReturnError(errors.New("permission denied"))

	err := s.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	s := New(sqlx.NewDb(db, "postgres"))

	mock.ExpectPing()
	assert.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("bad connection"))
	assert.Error(t, s.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDB(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		failures  int
		attempts  int
		expectErr bool
	}{
		{name: "first ping answers", failures: 0, attempts: 3},
		{name: "answers after retries", failures: 2, attempts: 3},
		{name: "gives up", failures: 3, attempts: 3, expectErr: true},
		{name: "zero attempts still pings once", failures: 0, attempts: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()

			for i := 0; i < tc.failures; i++ {
				mock.ExpectPing().WillReturnError(errors.New("connection refused"))
			}
			if !tc.expectErr {
				mock.ExpectPing()
			}

			err = waitForDB(context.Background(), sqlx.NewDb(db, "postgres"), tc.attempts, time.Millisecond)
			if tc.expectErr {
				assert.ErrorContains(t, err, "connection refused")
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWaitForDBStopsOnCancel(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = waitForDB(ctx, sqlx.NewDb(db, "postgres"), 5, time.Hour)
	assert.Error(t, err)
}

func TestHasClass(t *testing.T) {
	t.Parallel()

	assert.True(t, hasClass(&pq.Error{Code: "22008"}, classDataException))
	assert.True(t, hasClass(fmt.Errorf("wrapped: %w", &pq.Error{Code: "22003"}), classDataException))
	assert.False(t, hasClass(&pq.Error{Code: codeUniqueViolation}, classDataException))
	assert.False(t, hasClass(errors.New("22003"), classDataException))
}
