package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sk2andy/mattermost-buy-bot/api/controllers"
	"github.com/sk2andy/mattermost-buy-bot/api/middleware"
	"github.com/sk2andy/mattermost-buy-bot/internal/buys"
	"github.com/sk2andy/mattermost-buy-bot/internal/interests"
	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	"github.com/sk2andy/mattermost-buy-bot/pkg/db"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
	"github.com/sk2andy/mattermost-buy-bot/pkg/metrics"
)

// NewRouter wires every Mattermost callback endpoint plus health and metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	buyService buys.Service,
	interestService interests.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Slash command.
	r.Post("/createbuy", controllers.CreateBuy(buyService, logg))

	// Dialog submissions.
	r.Post("/save-buy", controllers.SaveBuy(buyService, logg))
	r.Post("/close-buy-confirm", controllers.CloseBuyConfirm(buyService, logg))
	r.Post("/save-interest", controllers.SaveInterest(interestService, logg))

	// Message buttons.
	r.Post("/edit-buy", controllers.EditBuy(buyService, logg))
	r.Post("/close-buy", controllers.CloseBuy(buyService, logg))
	r.Post("/remind-payment", controllers.RemindPayment(buyService, logg))
	r.Post("/interest", controllers.Interest(interestService, logg))
	r.Post("/interestlist", controllers.InterestList(interestService, logg))
	r.Post("/mark-payed", controllers.MarkPayed(interestService, logg))
	r.Post("/confirm-payment", controllers.ConfirmPayment(interestService, logg))
	r.Post("/reject-payment", controllers.RejectPayment(interestService, logg))

	return r
}
