package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"clankervids/internal/classify"
	"clankervids/internal/domain/entity"
	"clankervids/internal/infra/source"
	"clankervids/internal/observability/metrics"
	"clankervids/internal/observability/tracing"
	"clankervids/internal/repository"
)

// ThumbnailFinder resolves the best thumbnail URL for a YouTube video id.
type ThumbnailFinder interface {
	Best(ctx context.Context, videoID string) string
}

// ScanSource pairs a source adapter with its trust level.
type ScanSource struct {
	Source  source.Source
	Trusted bool

	// PageSize overrides the service-wide scan limit for this source when
	// positive.
	PageSize int
}

// SourceReport summarizes one source's contribution to a scan.
type SourceReport struct {
	Name       string
	Fetched    int
	Accepted   int
	Duplicates int
	Rejected   int
	Excluded   int
	Errors     int

	// FetchFailed is true when no listing page could be retrieved at all
	FetchFailed bool
}

// ScanReport summarizes a full scan run.
type ScanReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SourceReport

	// Stopped is true when the run ended early on a stop signal
	Stopped bool
}

// Added returns the total number of videos stored during the run.
func (r *ScanReport) Added() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Accepted
	}
	return total
}

// Fetched returns the total number of candidates seen during the run.
func (r *ScanReport) Fetched() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Fetched
	}
	return total
}

// Options tune a scan run.
type Options struct {
	// ScanLimit is the page size for the primary listing pass; the
	// secondary pass uses half of it
	ScanLimit int

	// SourceDelay is the pause between sources
	SourceDelay time.Duration

	// FetchTimeout bounds a single listing fetch
	FetchTimeout time.Duration
}

// DefaultOptions returns the production scan tuning.
func DefaultOptions() Options {
	return Options{
		ScanLimit:    30,
		SourceDelay:  time.Second,
		FetchTimeout: 2 * time.Minute,
	}
}

// Service runs scans. Sources are processed strictly in order, one at a
// time; per-source failures never abort the run.
type Service struct {
	repo       repository.VideoRepository
	classifier *classify.Classifier
	resolver   *Resolver
	thumbs     ThumbnailFinder
	opts       Options
}

// NewService creates a scan service. thumbs may be nil, in which case
// YouTube candidates keep whatever thumbnail their source provided.
func NewService(repo repository.VideoRepository, classifier *classify.Classifier, thumbs ThumbnailFinder, opts Options) *Service {
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = DefaultOptions().ScanLimit
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultOptions().FetchTimeout
	}
	return &Service{
		repo:       repo,
		classifier: classifier,
		resolver:   NewResolver(repo),
		thumbs:     thumbs,
		opts:       opts,
	}
}

// RunScan scans every source in order and returns a report. The context
// doubles as the stop signal: cancellation finishes the current source's
// candidate cleanly and skips the rest, returning a partial report without
// error.
func (s *Service) RunScan(ctx context.Context, sources []ScanSource) (*ScanReport, error) {
	report := &ScanReport{StartedAt: time.Now()}

	slog.Info("scan started", slog.Int("sources", len(sources)))

	for i, src := range sources {
		if ctx.Err() != nil {
			report.Stopped = true
			break
		}

		report.Sources = append(report.Sources, s.scanSource(ctx, src))

		// Pause between sources, but never after the last one
		if i < len(sources)-1 && s.opts.SourceDelay > 0 {
			select {
			case <-time.After(s.opts.SourceDelay):
			case <-ctx.Done():
				report.Stopped = true
			}
		}
	}

	report.FinishedAt = time.Now()

	result := "success"
	if report.Stopped {
		result = "stopped"
	}
	metrics.RecordScanRun(result)
	s.refreshVideoGauges(context.WithoutCancel(ctx))

	slog.Info("scan complete",
		slog.Int("fetched", report.Fetched()),
		slog.Int("added", report.Added()),
		slog.Bool("stopped", report.Stopped),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

// listingPages returns the two listing passes per source: the month's top
// posts at full size, then all-time hot posts at half size to catch fresh
// risers the ranked listing misses.
func (s *Service) listingPages(limit int) []source.Page {
	return []source.Page{
		{Listing: "top", Window: "month", Limit: limit},
		{Listing: "hot", Window: "all", Limit: limit / 2},
	}
}

func (s *Service) scanSource(ctx context.Context, src ScanSource) SourceReport {
	name := src.Source.Name()
	report := SourceReport{Name: name}
	start := time.Now()

	ctx, span := tracing.GetTracer().Start(ctx, "scan.source")
	span.SetAttributes(attribute.String("source", name))
	defer span.End()

	slog.Info("scanning source", slog.String("source", name))

	limit := s.opts.ScanLimit
	if src.PageSize > 0 {
		limit = src.PageSize
	}

	fetchedAny := false
	for _, page := range s.listingPages(limit) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
		candidates, err := src.Source.Fetch(fetchCtx, page)
		cancel()

		if err != nil {
			metrics.RecordSourceScanError(name, "fetch")
			slog.Warn("source fetch failed",
				slog.String("source", name),
				slog.String("listing", page.Listing),
				slog.Any("error", err))
			continue
		}
		fetchedAny = true

		known := s.knownOrigins(ctx, candidates)

		for _, c := range candidates {
			if ctx.Err() != nil {
				report.FetchFailed = !fetchedAny
				return report
			}
			report.Fetched++
			if c.OriginURL != "" && known[c.OriginURL] {
				report.Duplicates++
				metrics.RecordCandidate(name, metrics.OutcomeDuplicate)
				continue
			}
			s.processCandidate(ctx, src, c, &report)
		}
	}

	report.FetchFailed = !fetchedAny
	metrics.RecordSourceScan(name, time.Since(start))

	slog.Info("source scanned",
		slog.String("source", name),
		slog.Int("fetched", report.Fetched),
		slog.Int("added", report.Accepted),
		slog.Int("duplicates", report.Duplicates))

	return report
}

// refreshVideoGauges resets the per-category gauges from the store. Runs on
// an uncancelled context so a stopped scan still reports what it committed.
func (s *Service) refreshVideoGauges(ctx context.Context) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		slog.Warn("refreshing video gauges failed", slog.Any("error", err))
		return
	}
	for _, c := range counts {
		metrics.UpdateVideosTotal(string(c.Category), int(c.Count))
	}
}

// knownOrigins checks the page's origin URLs in one round trip so a mostly
// re-fetched listing does not cost a dedup query per candidate. On error the
// per-candidate resolver still covers dedup, so nil is returned and only
// logged.
func (s *Service) knownOrigins(ctx context.Context, candidates []source.Candidate) map[string]bool {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.OriginURL != "" {
			urls = append(urls, c.OriginURL)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	known, err := s.repo.ExistsByOriginURLBatch(ctx, urls)
	if err != nil {
		slog.Warn("batch origin check failed, using per-candidate checks",
			slog.Any("error", err))
		return nil
	}
	return known
}

func (s *Service) processCandidate(ctx context.Context, src ScanSource, c source.Candidate, report *SourceReport) {
	name := src.Source.Name()

	decision := s.classifier.Classify(c.Title, c.Description, src.Trusted)
	if !decision.Accepted {
		if decision.Reason == classify.ReasonExcludedTopic {
			report.Excluded++
			metrics.RecordCandidate(name, metrics.OutcomeExcluded)
		} else {
			report.Rejected++
			metrics.RecordCandidate(name, metrics.OutcomeRejected)
		}
		return
	}

	exists, err := s.resolver.Exists(ctx, c)
	if err != nil {
		report.Errors++
		metrics.RecordCandidate(name, metrics.OutcomeError)
		metrics.RecordSourceScanError(name, "store")
		slog.Error("dedup check failed",
			slog.String("source", name),
			slog.String("title", c.Title),
			slog.Any("error", err))
		return
	}
	if exists {
		report.Duplicates++
		metrics.RecordCandidate(name, metrics.OutcomeDuplicate)
		slog.Debug("skipped duplicate",
			slog.String("source", name),
			slog.String("title", c.Title))
		return
	}

	// YouTube thumbnails are resolved late so duplicates never cost probes
	if c.ExternalID != "" && s.thumbs != nil {
		c.ThumbnailURL = s.thumbs.Best(ctx, c.ExternalID)
	}

	video := s.buildVideo(c, decision.Category)
	if err := video.Validate(); err != nil {
		report.Errors++
		metrics.RecordCandidate(name, metrics.OutcomeError)
		slog.Warn("dropping invalid candidate",
			slog.String("source", name),
			slog.String("title", c.Title),
			slog.Any("error", err))
		return
	}

	if err := s.repo.Create(ctx, video); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			// Raced with another insert; the natural keys settled it
			report.Duplicates++
			metrics.RecordCandidate(name, metrics.OutcomeDuplicate)
			return
		}
		report.Errors++
		metrics.RecordCandidate(name, metrics.OutcomeError)
		metrics.RecordSourceScanError(name, "store")
		slog.Error("store failed",
			slog.String("source", name),
			slog.String("title", c.Title),
			slog.Any("error", err))
		return
	}

	report.Accepted++
	metrics.RecordCandidate(name, metrics.OutcomeAccepted)
	metrics.RecordVideoIngested(name, string(decision.Category))

	slog.Info("video added",
		slog.String("source", name),
		slog.String("title", c.Title),
		slog.String("category", string(decision.Category)),
		slog.Int64("views", c.Views))
}

// maxStoredTitle matches the entity's title limit; longer titles are
// truncated rather than rejected.
const maxStoredTitle = 200

func (s *Service) buildVideo(c source.Candidate, category entity.Category) *entity.Video {
	title := c.Title
	if runes := []rune(title); len(runes) > maxStoredTitle {
		title = string(runes[:maxStoredTitle])
	}

	duration := c.Duration
	if duration <= 0 {
		duration = 30.0
	}

	now := time.Now()
	uploadDate := c.UploadDate
	if uploadDate.IsZero() {
		uploadDate = now
	}

	return &entity.Video{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  c.Description,
		Creator:      c.Creator,
		Category:     category,
		VideoURL:     c.VideoURL,
		ThumbnailURL: c.ThumbnailURL,
		ExternalID:   c.ExternalID,
		OriginURL:    c.OriginURL,
		Duration:     duration,
		Views:        c.Views,
		Status:       entity.StatusActive,
		CreatedAt:    now,
		UploadDate:   uploadDate,
	}
}
