// Package video provides HTTP handlers for the public video endpoints:
// listing with ranked ordering, reactions, and category statistics.
package video

import (
	"time"

	"clankervids/internal/domain/entity"
)

// DTO is the JSON shape for a single video.
type DTO struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Creator      string  `json:"creator"`
	Category     string  `json:"category"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`

	Views        int64 `json:"views"`
	Clanks       int64 `json:"clanks"`
	EpicBots     int64 `json:"epic_bots"`
	SystemErrors int64 `json:"system_errors"`

	CreatedAt  time.Time `json:"created_at"`
	UploadDate time.Time `json:"upload_date"`
}

// toDTO maps a domain video to its JSON form. External identifiers stay
// internal; only the playable URL is exposed.
func toDTO(v *entity.Video) DTO {
	return DTO{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Creator:      v.Creator,
		Category:     string(v.Category),
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Views:        v.Views,
		Clanks:       v.Clanks,
		EpicBots:     v.EpicBots,
		SystemErrors: v.SystemErrors,
		CreatedAt:    v.CreatedAt,
		UploadDate:   v.UploadDate,
	}
}

// ListResponse is the JSON body for GET /api/videos.
type ListResponse struct {
	Videos []DTO `json:"videos"`
	Count  int   `json:"count"`
}
