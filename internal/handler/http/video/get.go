package video

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"clankervids/internal/domain/entity"
	"clankervids/internal/handler/http/requestid"
	"clankervids/internal/handler/http/respond"
	"clankervids/internal/repository"
)

// GetHandler serves GET /api/videos/{id}.
type GetHandler struct {
	Repo   repository.VideoRepository
	Logger *slog.Logger
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	v, err := h.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.SafeError(w, http.StatusNotFound, fmt.Errorf("video not found"))
			return
		}
		h.Logger.Error("failed to get video",
			slog.String("request_id", requestid.FromContext(ctx)),
			slog.String("video_id", id),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(v))
}
