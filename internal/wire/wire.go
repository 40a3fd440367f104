package wire

import (
	"vacation-rental/internal/adaptor"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/usecase"
	"vacation-rental/pkg/database"
	"vacation-rental/pkg/lock"
	"vacation-rental/pkg/middleware"
	"vacation-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes from the shared dependencies.
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	locker lock.Locker,
	notifier usecase.BookingNotifier,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, locker, notifier, config, logger)
	handler := adaptor.NewHandler(service, db, config, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	r.Get("/health", handler.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(config.RateLimit.Requests, config.RateLimit.Window, logger))
		r.Use(middleware.Timeout(config.App.RequestTimeout))

		wireHouse(r, handler.House)
		wireBooking(r, handler.Booking)
	})

	return r
}
