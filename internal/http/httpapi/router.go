// Package httpapi assembles the chi router for the calendar service.
package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"calshop/internal/http/handlers"
	"calshop/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))

	r.Get("/v1/healthz", app.Health)

	r.Route("/project", func(r chi.Router) {
		r.Post("/start", app.StartProject)
		r.Post("/upload", app.UploadImages)
		r.Get("/images", app.ListImages)
		r.Delete("/images/{id}", app.DeleteImage)
		r.Get("/options", app.CustomizationOptions)
		r.Post("/preferences", app.SetPreferences)
		r.Post("/themes", app.ConfirmThemes)
		r.Post("/generate", app.GenerateAll)
		r.Post("/generate/{month}", app.GenerateMonth)
		r.Get("/status", app.Status)
		r.Post("/checkout", app.Checkout)
	})

	r.Route("/api/image", func(r chi.Router) {
		r.Get("/thumbnail/{id}", app.Thumbnail)
		r.Get("/month/{month}", app.MonthImage)
	})

	r.Post("/webhooks/stripe", app.StripeWebhook)

	return r
}
