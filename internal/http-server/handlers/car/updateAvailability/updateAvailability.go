package updateAvailability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/storage"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Availability is free text: besides "Available" and "Booked" an operator
// may park a car under any status of their own.
type Request struct {
	CarID        int64  `json:"car_id" validate:"required,gt=0"`
	Availability string `json:"availability" validate:"required,max=20"`
}

type Response struct {
	response.Response
	Message string `json:"message,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AvailabilityUpdater
type AvailabilityUpdater interface {
	UpdateCarAvailability(ctx context.Context, carID int64, availability string) error
}

func New(log *slog.Logger, updater AvailabilityUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.updateAvailability.New"

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

		req.Availability = strings.TrimSpace(req.Availability)

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidRequest(err))

			return
		}

		err = updater.UpdateCarAvailability(r.Context(), req.CarID, req.Availability)
		if errors.Is(err, storage.ErrCarNotFound) {
			log.Info("car not found", slog.Int64("car_id", req.CarID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("car not found"))

			return
		}
		if err != nil {
			log.Error("failed to update car availability", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update car availability"))

			return
		}

		log.Info("car availability updated",
			slog.Int64("car_id", req.CarID),
			slog.String("availability", req.Availability),
		)

		render.JSON(w, r, Response{
			Response: response.OK(),
			Message:  "Car availability updated successfully!",
		})
	}
}
