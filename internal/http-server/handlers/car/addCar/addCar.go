package addCar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/models"
	"carRental/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Model              string  `json:"model" validate:"required,max=100"`
	RegistrationNumber string  `json:"registration_number" validate:"required,max=20"`
	DailyRentalRate    float64 `json:"daily_rental_rate" validate:"required,gt=0,lte=99999999.99"`
}

type Response struct {
	response.Response
	Message string `json:"message,omitempty"`
	CarID   int64  `json:"car_id,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarSaver
type CarSaver interface {
	SaveCar(ctx context.Context, car models.NewCar) (int64, error)
}

func New(log *slog.Logger, carSaver CarSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.addCar.New"

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

		if !wholeCents(req.DailyRentalRate) {
			log.Error("rate has sub-cent precision", slog.Float64("daily_rental_rate", req.DailyRentalRate))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("field DailyRentalRate must have at most two decimal places"))

			return
		}

		id, err := carSaver.SaveCar(r.Context(), models.NewCar{
			Model:              req.Model,
			RegistrationNumber: req.RegistrationNumber,
			DailyRentalRate:    req.DailyRentalRate,
		})
		if errors.Is(err, storage.ErrCarExists) {
			log.Info("car already exists", slog.String("registration_number", req.RegistrationNumber))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("car with this registration number already exists"))

			return
		}
		if errors.Is(err, storage.ErrInvalidInput) {
			log.Error("car rejected by storage", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("car data out of range"))

			return
		}
		if err != nil {
			log.Error("failed to add car", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add car"))

			return
		}

		log.Info("car added", slog.Int64("id", id))

		responseCreated(w, r, id)
	}
}

func responseCreated(w http.ResponseWriter, r *http.Request, id int64) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response: response.OK(),
		Message:  "Car added successfully",
		CarID:    id,
	})
}

// wholeCents reports whether v has no more than two decimal places, so the
// stored NUMERIC(10,2) rate equals the submitted one.
func wholeCents(v float64) bool {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	dot := strings.IndexByte(s, '.')

	return dot < 0 || len(s)-dot-1 <= 2
}
