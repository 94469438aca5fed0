package video

import (
	"log/slog"
	"net/http"

	"clankervids/internal/repository"
	"clankervids/internal/usecase/rank"
)

// Register wires the video endpoints onto the given mux.
func Register(mux *http.ServeMux, repo repository.VideoRepository, ranker *rank.Ranker, logger *slog.Logger) {
	mux.Handle("GET /api/videos", ListHandler{Repo: repo, Ranker: ranker, Logger: logger})
	mux.Handle("GET /api/videos/{id}", GetHandler{Repo: repo, Logger: logger})
	mux.Handle("POST /api/videos/{id}/react", ReactHandler{Repo: repo, Logger: logger})
	mux.Handle("GET /api/stats", StatsHandler{Repo: repo, Logger: logger})
}
