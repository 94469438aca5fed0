package rank_test

import (
	"testing"
	"time"

	"clankervids/internal/domain/entity"
	"clankervids/internal/usecase/rank"
)

func video(clanks, epic, fails, views int64, age time.Duration, now time.Time) *entity.Video {
	return &entity.Video{
		Clanks:       clanks,
		EpicBots:     epic,
		SystemErrors: fails,
		Views:        views,
		CreatedAt:    now.Add(-age),
	}
}

func TestPopularity_WeightedSum(t *testing.T) {
	r := rank.New(rank.DefaultWeights())
	now := time.Now()

	v := video(2, 1, 3, 100, time.Hour, now)
	// 2*10 + 1*3 + 3*5 + 100*1
	if got, want := r.Popularity(v), 138.0; got != want {
		t.Errorf("Popularity() = %v, want %v", got, want)
	}
}

func TestPopularity_MonotonicInCounters(t *testing.T) {
	r := rank.New(rank.DefaultWeights())
	now := time.Now()

	base := video(1, 1, 1, 10, time.Hour, now)
	more := video(2, 1, 1, 10, time.Hour, now)
	if r.Popularity(more) <= r.Popularity(base) {
		t.Error("Popularity() must increase with reaction counters")
	}
}

func TestTrending_RecencySteps(t *testing.T) {
	w := rank.DefaultWeights()
	r := rank.New(w)
	now := time.Now()

	tests := []struct {
		name  string
		age   time.Duration
		bonus float64
	}{
		{"under 24h", 6 * time.Hour, w.BonusUnder24h},
		{"under 72h", 48 * time.Hour, w.BonusUnder72h},
		{"under 7d", 5 * 24 * time.Hour, w.BonusUnder7d},
		{"beyond 7d", 30 * 24 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := video(0, 0, 0, 50, tt.age, now)
			want := r.Popularity(v) + tt.bonus
			if got := r.Trending(v, now); got != want {
				t.Errorf("Trending() = %v, want %v", got, want)
			}
		})
	}
}

func TestSort_TrendingSurfacesFreshContent(t *testing.T) {
	r := rank.New(rank.DefaultWeights())
	now := time.Now()

	old := video(100, 0, 0, 1000, 30*24*time.Hour, now) // popularity 2000
	fresh := video(0, 0, 0, 10, time.Hour, now)         // popularity 10, bonus 5000

	videos := []*entity.Video{old, fresh}
	r.Sort(videos, rank.ModeTrending, now)
	if videos[0] != fresh {
		t.Error("trending sort should surface the fresh video first")
	}

	r.Sort(videos, rank.ModePopular, now)
	if videos[0] != old {
		t.Error("popular sort should keep the high-engagement video first")
	}
}
