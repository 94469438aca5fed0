package video

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"clankervids/internal/domain/entity"
	"clankervids/internal/handler/http/requestid"
	"clankervids/internal/handler/http/respond"
	"clankervids/internal/repository"
	"clankervids/internal/usecase/rank"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Sort modes accepted by the list endpoint.
const (
	sortRecent   = "recent"
	sortPopular  = "popular"
	sortClanks   = "clanks"
	sortTrending = "trending"
)

// ListHandler serves GET /api/videos with optional category filtering and
// ranked ordering.
type ListHandler struct {
	Repo   repository.VideoRepository
	Ranker *rank.Ranker
	Logger *slog.Logger
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)

	category, err := parseCategory(r.URL.Query().Get("category"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	sortMode := r.URL.Query().Get("sort")
	if sortMode == "" {
		sortMode = sortRecent
	}
	switch sortMode {
	case sortRecent, sortPopular, sortClanks, sortTrending:
	default:
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("unknown sort mode: %s", sortMode))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	// Ranked modes score the whole active set before cutting; truncating to
	// the newest rows first would hide older high-engagement videos.
	fetchLimit := limit
	if sortMode != sortRecent {
		fetchLimit = 0
	}

	videos, err := h.Repo.ListActive(ctx, category, fetchLimit)
	if err != nil {
		h.Logger.Error("failed to list videos",
			slog.String("request_id", reqID),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	h.order(videos, sortMode)
	if len(videos) > limit {
		videos = videos[:limit]
	}

	dtos := make([]DTO, 0, len(videos))
	for _, v := range videos {
		dtos = append(dtos, toDTO(v))
	}
	respond.JSON(w, http.StatusOK, ListResponse{Videos: dtos, Count: len(dtos)})
}

// order re-sorts the repository's recency ordering for the other modes.
func (h ListHandler) order(videos []*entity.Video, mode string) {
	switch mode {
	case sortPopular:
		h.Ranker.Sort(videos, rank.ModePopular, time.Now())
	case sortTrending:
		h.Ranker.Sort(videos, rank.ModeTrending, time.Now())
	case sortClanks:
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].Clanks > videos[j].Clanks
		})
	}
}

func parseCategory(raw string) (entity.Category, error) {
	if raw == "" || raw == "all" {
		return "", nil
	}
	c := entity.Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %s", raw)
	}
	return c, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit: %s", raw)
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
