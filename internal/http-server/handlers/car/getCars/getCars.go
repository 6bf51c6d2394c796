package getCars

import (
	"context"
	"log/slog"
	"net/http"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/models"

	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CarsGetter
type CarsGetter interface {
	GetAllCars(ctx context.Context) ([]models.Car, error)
}

func New(log *slog.Logger, carsGetter CarsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.car.getCars.New"

		log := log.With(slog.String("op", op))

		cars, err := carsGetter.GetAllCars(r.Context())
		if err != nil {
			log.Error("failed to get cars", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get cars"))
			return
		}

		log.Info("cars retrieved successfully", slog.Int("count", len(cars)))

		responseOK(w, r, cars)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, cars []models.Car) {
	if cars == nil {
		cars = []models.Car{}
	}

	render.JSON(w, r, cars)
}
