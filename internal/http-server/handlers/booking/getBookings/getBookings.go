package getBookings

import (
	"context"
	"log/slog"
	"net/http"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/models"

	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingsGetter
type BookingsGetter interface {
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
}

// New lists every booking. total_cost is null for bookings whose cost
// has not been computed.
func New(log *slog.Logger, bookingsGetter BookingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getBookings.New"

		log := log.With(slog.String("op", op))

		bookings, err := bookingsGetter.GetAllBookings(r.Context())
		if err != nil {
			log.Error("failed to get bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get bookings"))
			return
		}

		log.Info("bookings retrieved successfully", slog.Int("count", len(bookings)))

		responseOK(w, r, bookings)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, bookings []models.Booking) {
	if bookings == nil {
		bookings = []models.Booking{}
	}

	render.JSON(w, r, bookings)
}
