package bookCar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/models"
	"carRental/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	CustomerID  int64  `json:"customer_id" validate:"required,gt=0"`
	CarID       int64  `json:"car_id" validate:"required,gt=0"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	ReturnDate  string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

type Response struct {
	response.Response
	Message   string  `json:"message,omitempty"`
	BookingID int64   `json:"booking_id,omitempty"`
	TotalCost float64 `json:"total_cost"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarBooker
type CarBooker interface {
	BookCar(ctx context.Context, booking models.NewBooking) (models.BookingResult, error)
}

func New(log *slog.Logger, booker CarBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.bookCar.New"

		log := log.With(
			slog.String("op", op),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if errors.Is(err, io.EOF) {
			log.Error("request body is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request"))

			return
		}
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidRequest(err))

			return
		}

		booking, err := newBooking(req)
		if err != nil {
			log.Error("invalid booking period", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))

			return
		}

		log = log.With(
			slog.Int64("car_id", req.CarID),
			slog.Int64("customer_id", req.CustomerID),
		)

		result, err := booker.BookCar(r.Context(), booking)
		if err != nil {
			log.Error("failed to book car", sl.Err(err))

			switch {
			case errors.Is(err, storage.ErrCarNotAvailable):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("Car not available for booking"))
			case errors.Is(err, storage.ErrCarNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("car not found"))
			case errors.Is(err, storage.ErrCustomerNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("customer not found"))
			case errors.Is(err, storage.ErrInvalidDateRange):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(errReturnBeforeBooking.Error()))
			case errors.Is(err, storage.ErrInvalidInput):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("booking data out of range"))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to book car"))
			}

			return
		}

		log.Info("car booked successfully",
			slog.Int64("booking_id", result.ID),
			slog.Float64("total_cost", result.TotalCost),
		)

		responseCreated(w, r, result)
	}
}

// maxRentalDays keeps the longest booking within the total_cost column at the
// highest accepted daily rate.
const maxRentalDays = 365

var (
	errReturnBeforeBooking = errors.New("return_date must not be before booking_date")
	errYearZero            = errors.New("dates must not be earlier than 0001-01-01")
	errPeriodTooLong       = fmt.Errorf("rental period must not exceed %d days", maxRentalDays)
)

func newBooking(req Request) (models.NewBooking, error) {
	bookingDate, err := time.Parse(models.DateLayout, req.BookingDate)
	if err != nil {
		return models.NewBooking{}, errors.New("booking_date must be a date in YYYY-MM-DD format")
	}

	returnDate, err := time.Parse(models.DateLayout, req.ReturnDate)
	if err != nil {
		return models.NewBooking{}, errors.New("return_date must be a date in YYYY-MM-DD format")
	}

	if bookingDate.Year() < 1 || returnDate.Year() < 1 {
		return models.NewBooking{}, errYearZero
	}

	booking := models.NewBooking{
		CustomerID:  req.CustomerID,
		CarID:       req.CarID,
		BookingDate: bookingDate,
		ReturnDate:  returnDate,
	}

	if booking.ReturnDate.Before(booking.BookingDate) {
		return models.NewBooking{}, errReturnBeforeBooking
	}

	if booking.Days() > maxRentalDays {
		return models.NewBooking{}, errPeriodTooLong
	}

	return booking, nil
}

func responseCreated(w http.ResponseWriter, r *http.Request, result models.BookingResult) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response:  response.OK(),
		Message:   "Car booked successfully!",
		BookingID: result.ID,
		TotalCost: result.TotalCost,
	})
}
