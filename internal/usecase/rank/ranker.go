// Package rank derives sortable popularity and trending scores from stored
// engagement counters. It is consumed by read paths only; ingestion never
// ranks.
package rank

import (
	"sort"
	"time"

	"clankervids/internal/domain/entity"
)

// Mode selects the ordering a caller wants.
type Mode string

const (
	// ModePopular orders purely by weighted engagement.
	ModePopular Mode = "popular"
	// ModeTrending adds a step-decayed recency bonus so fresh videos can
	// surface ahead of older high-engagement ones.
	ModeTrending Mode = "trending"
)

// Weights configures the engagement score. All values are configuration, not
// constants; the defaults reproduce the ordering the site shipped with
// (clanks*10 + system_errors*5 + views).
type Weights struct {
	Clank float64 `yaml:"clank"`
	Epic  float64 `yaml:"epic"`
	Fail  float64 `yaml:"fail"`
	View  float64 `yaml:"view"`

	// Recency bonuses applied in trending mode, in discrete steps by age.
	BonusUnder24h float64 `yaml:"bonus_under_24h"`
	BonusUnder72h float64 `yaml:"bonus_under_72h"`
	BonusUnder7d  float64 `yaml:"bonus_under_7d"`
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Clank:         10,
		Epic:          3,
		Fail:          5,
		View:          1,
		BonusUnder24h: 5000,
		BonusUnder72h: 2000,
		BonusUnder7d:  500,
	}
}

// Ranker scores videos for read-path ordering.
type Ranker struct {
	weights Weights
}

// New creates a Ranker with the given weights.
func New(weights Weights) *Ranker {
	return &Ranker{weights: weights}
}

// Popularity returns the engagement score without any recency component.
// It is monotonic in every counter.
func (r *Ranker) Popularity(v *entity.Video) float64 {
	w := r.weights
	return w.Clank*float64(v.Clanks) +
		w.Epic*float64(v.EpicBots) +
		w.Fail*float64(v.SystemErrors) +
		w.View*float64(v.Views)
}

// Trending returns the popularity score plus a recency bonus that decays in
// discrete steps: full bonus under 24 hours, smaller under 72 hours, smaller
// still under 7 days, zero beyond.
func (r *Ranker) Trending(v *entity.Video, now time.Time) float64 {
	score := r.Popularity(v)
	age := now.Sub(v.CreatedAt)
	switch {
	case age < 24*time.Hour:
		score += r.weights.BonusUnder24h
	case age < 72*time.Hour:
		score += r.weights.BonusUnder72h
	case age < 7*24*time.Hour:
		score += r.weights.BonusUnder7d
	}
	return score
}

// Score returns the score for the requested mode. Unknown modes fall back to
// popularity.
func (r *Ranker) Score(v *entity.Video, mode Mode, now time.Time) float64 {
	if mode == ModeTrending {
		return r.Trending(v, now)
	}
	return r.Popularity(v)
}

// Sort orders videos in place, highest score first. Ties keep the more
// recently created video first so the order is stable across runs.
func (r *Ranker) Sort(videos []*entity.Video, mode Mode, now time.Time) {
	sort.SliceStable(videos, func(i, j int) bool {
		si, sj := r.Score(videos[i], mode, now), r.Score(videos[j], mode, now)
		if si != sj {
			return si > sj
		}
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
}
