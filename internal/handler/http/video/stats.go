package video

import (
	"log/slog"
	"net/http"

	"clankervids/internal/handler/http/requestid"
	"clankervids/internal/handler/http/respond"
	"clankervids/internal/repository"
)

// StatsResponse is the JSON body for GET /api/stats.
type StatsResponse struct {
	Total      int64            `json:"total"`
	Categories map[string]int64 `json:"categories"`
}

// StatsHandler reports active video counts per category.
type StatsHandler struct {
	Repo   repository.VideoRepository
	Logger *slog.Logger
}

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.Repo.CountByCategory(ctx)
	if err != nil {
		h.Logger.Error("failed to count videos",
			slog.String("request_id", requestid.FromContext(ctx)),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := StatsResponse{Categories: make(map[string]int64, len(counts))}
	for _, c := range counts {
		resp.Categories[string(c.Category)] = c.Count
		resp.Total += c.Count
	}

	respond.JSON(w, http.StatusOK, resp)
}
