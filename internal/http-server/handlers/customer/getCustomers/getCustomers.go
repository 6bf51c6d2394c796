package getCustomers

import (
	"context"
	"log/slog"
	"net/http"

	"carRental/internal/lib/api/response"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/models"

	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CustomersGetter
type CustomersGetter interface {
	GetAllCustomers(ctx context.Context) ([]models.Customer, error)
}

func New(log *slog.Logger, customerGetter CustomersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customer.getCustomers.New"

		log := log.With(slog.String("op", op))

		customers, err := customerGetter.GetAllCustomers(r.Context())
		if err != nil {
			log.Error("failed to get customers", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get customers"))
			return
		}

		log.Info("customers retrieved successfully", slog.Int("count", len(customers)))

		responseOK(w, r, customers)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, customers []models.Customer) {
	if customers == nil {
		customers = []models.Customer{}
	}

	render.JSON(w, r, customers)
}
