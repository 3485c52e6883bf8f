package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/XWAP06yg/viscose-uploader/pkg/uploader"
)

// StatusFunc supplies the snapshot served by the status endpoint.
type StatusFunc func() uploader.Status

// GetRouter initialises a new http router and applies all routes
func GetRouter(status StatusFunc) http.Handler {
	r := chi.NewRouter()
	return applyRoutes(r, status)
}

func applyRoutes(r chi.Router, status StatusFunc) chi.Router {
	r.Route("/", func(r chi.Router) {
		r.Get("/status", getStatus(status))
	})

	return r
}
