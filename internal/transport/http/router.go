package http

import (
	"encoding/json"
	"net/http"

	"geoplay-service/internal/app"
	"geoplay-service/internal/geo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter mounts the websocket endpoint and the read-only JSON API.
func NewRouter(service *app.GameService, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	ws := NewWSHandler(service, logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, service.Leaderboard())
		})
		r.Get("/regions", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, geo.Regions())
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
