package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gift_tracker/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/gifts", func(r chi.Router) {
			r.Post("/", handler(s.postGift))
			r.Get("/", handler(s.listGifts))
			r.Get("/types", handler(s.getGiftTypes))
			r.Get("/export", handler(s.getExport))
			r.Post("/export/snapshot", handler(s.postExportSnapshot))
			r.Put("/{id}", handler(s.putRecipient))
		})

		r.Get("/status", handler(s.getStatus))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
