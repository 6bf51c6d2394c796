package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carRental/internal/config"
	"carRental/internal/http-server/handlers/booking/bookCar"
	"carRental/internal/http-server/handlers/booking/getBookings"
	"carRental/internal/http-server/handlers/car/addCar"
	"carRental/internal/http-server/handlers/car/getCars"
	"carRental/internal/http-server/handlers/car/updateAvailability"
	"carRental/internal/http-server/handlers/customer/getCustomers"
	"carRental/internal/http-server/handlers/health/ping"
	"carRental/internal/http-server/middleware/mwlogger"
	"carRental/internal/lib/logger/handlers/slogpretty"
	"carRental/internal/lib/logger/sl"
	"carRental/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

// Storage is everything the HTTP layer needs from persistence.
type Storage interface {
	getCars.CarsGetter
	addCar.CarSaver
	updateAvailability.AvailabilityUpdater
	getCustomers.CustomersGetter
	bookCar.CarBooker
	getBookings.BookingsGetter
	ping.Pinger
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting car rental", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.InitDB(context.Background(), &cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if cfg.Database.Migrate {
		if err = storage.EnsureSchema(context.Background()); err != nil {
			log.Error("failed to ensure schema", sl.Err(err))
			os.Exit(1)
		}
	}

	router := newRouter(log, storage, cfg.HTTPServer.RequestTimeout)

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.HTTPServer.RequestTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

func newRouter(log *slog.Logger, storage Storage, requestTimeout time.Duration) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/healthz", ping.New(log, storage))

	router.Get("/cars", getCars.New(log, storage))
	router.Post("/add-car", addCar.New(log, storage))
	router.Put("/update-car-availability", updateAvailability.New(log, storage))
	router.Get("/customers", getCustomers.New(log, storage))
	router.Post("/book-car", bookCar.New(log, storage))
	router.Get("/bookings", getBookings.New(log, storage))

	return router
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
