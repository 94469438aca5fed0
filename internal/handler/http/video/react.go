package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"clankervids/internal/domain/entity"
	"clankervids/internal/handler/http/requestid"
	"clankervids/internal/handler/http/respond"
	"clankervids/internal/repository"
)

// reactRequest is the JSON body for POST /api/videos/{id}/react.
type reactRequest struct {
	Reaction string `json:"reaction"`
}

// ReactHandler increments one of a video's reaction counters.
type ReactHandler struct {
	Repo   repository.VideoRepository
	Logger *slog.Logger
}

func (h ReactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	id := r.PathValue("id")

	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	switch req.Reaction {
	case repository.ReactionClank, repository.ReactionEpic, repository.ReactionFail:
	default:
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("unknown reaction: %s", req.Reaction))
		return
	}

	if err := h.Repo.IncrementReaction(ctx, id, req.Reaction); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.SafeError(w, http.StatusNotFound, fmt.Errorf("video not found"))
			return
		}
		h.Logger.Error("failed to record reaction",
			slog.String("request_id", reqID),
			slog.String("video_id", id),
			slog.String("reaction", req.Reaction),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
