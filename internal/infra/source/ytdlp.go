package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// YtDlpClient shells out to the yt-dlp binary for video metadata and search.
// yt-dlp keeps up with YouTube's page layout changes far better than any Go
// library, so the external process dependency is worth it.
type YtDlpClient struct {
	binary string

	// lookupTimeout bounds a single metadata fetch
	lookupTimeout time.Duration

	// searchTimeout bounds a search, which resolves several pages
	searchTimeout time.Duration
}

// NewYtDlpClient creates a client using the yt-dlp binary on PATH.
func NewYtDlpClient() *YtDlpClient {
	return &YtDlpClient{
		binary:        "yt-dlp",
		lookupTimeout: 30 * time.Second,
		searchTimeout: 60 * time.Second,
	}
}

// VideoMetadata is the subset of yt-dlp's JSON dump the curator uses.
type VideoMetadata struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	ViewCount   int64   `json:"view_count"`
	Thumbnail   string  `json:"thumbnail"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"`
	WebpageURL  string  `json:"webpage_url"`
}

// Lookup fetches metadata for one video URL without downloading it.
func (c *YtDlpClient) Lookup(ctx context.Context, url string) (*VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	out, err := c.run(ctx,
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp lookup %s: %w", url, err)
	}

	var meta VideoMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("yt-dlp lookup %s: decode: %w", url, err)
	}
	if meta.WebpageURL == "" {
		meta.WebpageURL = url
	}
	return &meta, nil
}

// Search runs a YouTube search and returns up to maxResults watch URLs.
func (c *YtDlpClient) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	out, err := c.run(ctx,
		fmt.Sprintf("ytsearch%d:%s", maxResults, query),
		"--get-id",
		"--no-warnings",
		"--flat-playlist")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search %q: %w", query, err)
	}

	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			urls = append(urls, WatchURL(id))
		}
	}
	return urls, scanner.Err()
}

// Candidate converts looked-up metadata into the common candidate shape.
func (m *VideoMetadata) Candidate() Candidate {
	c := Candidate{
		Title:        m.Title,
		Description:  m.Description,
		VideoURL:     m.WebpageURL,
		ThumbnailURL: m.Thumbnail,
		ExternalID:   m.ID,
		OriginURL:    m.WebpageURL,
		Duration:     m.Duration,
		Views:        m.ViewCount,
	}
	if m.Uploader != "" {
		c.Creator = "@" + m.Uploader
	}
	// yt-dlp reports upload_date as YYYYMMDD
	if t, err := time.Parse("20060102", m.UploadDate); err == nil {
		c.UploadDate = t
	}
	return c
}

func (c *YtDlpClient) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, firstLine(msg))
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
