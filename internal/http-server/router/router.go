package router

import (
	"net/http"

	"image-derivatives/internal/http-server/handler/derivative"
	"image-derivatives/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	DerivativeHandler *derivative.DerivativeHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/derivatives", func(r chi.Router) {
			r.Post("/", h.DerivativeHandler.Process)
			r.Post("/upload", h.DerivativeHandler.ProcessMultipart)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
