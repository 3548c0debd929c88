package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Pradeep20056/thumbnail-genie/internal/http/handlers"
	"github.com/Pradeep20056/thumbnail-genie/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.Locale,
	)
	if app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin))
	}

	r.Get("/v1/healthz", app.Health)
	if app.MetricsHTTP != nil {
		r.Method(stdhttp.MethodGet, "/metrics", app.MetricsHTTP)
	}

	r.Post("/v1/auth/google", app.AuthGoogleVerify)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.JWTSecret))

		r.Get("/v1/me", app.Me)

		r.Post("/v1/thumbnails/generate", app.ThumbnailsGenerate)
		r.Post("/v1/thumbnails/compose", app.ThumbnailsCompose)
		r.Post("/v1/thumbnails/enhance", app.ThumbnailsEnhance)

		r.Post("/v1/payments/orders", app.PaymentsCreateOrder)
		r.Post("/v1/payments/verify", app.PaymentsVerify)
		r.Get("/v1/payments/{orderID}", app.PaymentsStatus)

		r.Get("/v1/history", app.HistoryList)
		r.Delete("/v1/history/{id}", app.HistoryDelete)
		r.Post("/v1/history/export", app.HistoryExport)
	})

	return r
}
