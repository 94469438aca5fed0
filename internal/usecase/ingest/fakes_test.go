package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"clankervids/internal/domain/entity"
	"clankervids/internal/infra/source"
	"clankervids/internal/repository"
)

// memRepo is an in-memory VideoRepository enforcing the same natural-key
// uniqueness as the real store.
type memRepo struct {
	mu         sync.Mutex
	videos     []*entity.Video
	batchCalls int
}

func newMemRepo() *memRepo { return &memRepo{} }

func (m *memRepo) Create(_ context.Context, v *entity.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.videos {
		if v.ExternalID != "" && existing.ExternalID == v.ExternalID {
			return entity.ErrDuplicate
		}
		if existing.OriginURL == v.OriginURL {
			return entity.ErrDuplicate
		}
	}
	cp := *v
	m.videos = append(m.videos, &cp)
	return nil
}

func (m *memRepo) ExistsByExternalID(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if id != "" && v.ExternalID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ExistsByOriginURL(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.OriginURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ExistsByOriginURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()

	out := make(map[string]bool)
	for _, u := range urls {
		found, _ := m.ExistsByOriginURL(ctx, u)
		if found {
			out[u] = true
		}
	}
	return out, nil
}

func (m *memRepo) ExistsByTitlePrefix(_ context.Context, prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if TitlePrefix(v.Title) == prefix {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Get(_ context.Context, id string) (*entity.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ListActive(_ context.Context, category entity.Category, limit int) ([]*entity.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Video
	for _, v := range m.videos {
		if v.Status != entity.StatusActive {
			continue
		}
		if category != "" && v.Category != category {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) ListYouTube(_ context.Context) ([]*entity.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Video
	for _, v := range m.videos {
		if v.Status == entity.StatusActive && len(v.ExternalID) == 11 {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) IncrementReaction(_ context.Context, id string, reaction string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.ID != id {
			continue
		}
		switch reaction {
		case repository.ReactionClank:
			v.Clanks++
		case repository.ReactionEpic:
			v.EpicBots++
		case repository.ReactionFail:
			v.SystemErrors++
		default:
			return entity.ErrInvalidInput
		}
		return nil
	}
	return entity.ErrNotFound
}

func (m *memRepo) UpdateThumbnail(_ context.Context, id string, thumbnailURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.ID == id {
			v.ThumbnailURL = thumbnailURL
			return nil
		}
	}
	return entity.ErrNotFound
}

func (m *memRepo) CountByCategory(_ context.Context) ([]repository.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[entity.Category]int64)
	for _, v := range m.videos {
		if v.Status == entity.StatusActive {
			counts[v.Category]++
		}
	}
	var out []repository.CategoryCount
	for cat, n := range counts {
		out = append(out, repository.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// stubSource returns canned candidates, or an error, and records the pages
// it was asked for.
type stubSource struct {
	name       string
	candidates []source.Candidate
	err        error
	pages      []source.Page
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, page source.Page) ([]source.Candidate, error) {
	s.pages = append(s.pages, page)
	if s.err != nil {
		return nil, s.err
	}
	// Only the first pass returns content so candidates are not double
	// counted across the two listing passes
	if len(s.pages) > 1 {
		return nil, nil
	}
	return s.candidates, nil
}

// stubThumbs returns a fixed URL pattern without any network traffic.
type stubThumbs struct{ calls int }

func (s *stubThumbs) Best(_ context.Context, videoID string) string {
	s.calls++
	return "https://i.ytimg.com/vi/" + videoID + "/maxresdefault.jpg"
}

// stubLookup serves canned yt-dlp metadata.
type stubLookup struct {
	meta *source.VideoMetadata
	err  error
}

func (s *stubLookup) Lookup(context.Context, string) (*source.VideoMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

// stubPages serves canned OpenGraph page metadata.
type stubPages struct {
	meta *source.PageMeta
	err  error
}

func (s *stubPages) Resolve(context.Context, string) (*source.PageMeta, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

var errFetchBoom = errors.New("listing unavailable")
