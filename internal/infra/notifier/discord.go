package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clankervids/internal/usecase/notify"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordChannel delivers scan reports to Discord via webhook.
type DiscordChannel struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordChannel creates a channel with the specified configuration.
// Discord webhooks allow 30 requests per minute; the limiter stays well
// under that since scans run a few times a day.
func NewDiscordChannel(config DiscordConfig) *DiscordChannel {
	return &DiscordChannel{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// Name implements notify.Channel.
func (d *DiscordChannel) Name() string { return "discord" }

// IsEnabled implements notify.Channel.
func (d *DiscordChannel) IsEnabled() bool {
	return d.config.Enabled && d.config.WebhookURL != ""
}

// discordPayload is the JSON body sent to the webhook.
type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      discordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// discordErrorResponse is Discord's error body, used for retry_after.
type discordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
}

const (
	// Discord green (#57F287) for clean runs, yellow (#FEE75C) otherwise
	discordGreenColor  = 5763719
	discordYellowColor = 16705372
)

// buildPayload renders the scan summary as a single embed.
func (d *DiscordChannel) buildPayload(report notify.Report) discordPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Fetched **%d** candidates, added **%d** new videos.\n", report.Fetched, report.Added)
	fmt.Fprintf(&b, "Duplicates skipped: %d", report.Duplicates)
	if report.Errors > 0 {
		fmt.Fprintf(&b, " • Errors: %d", report.Errors)
	}
	if len(report.FailedSources) > 0 {
		fmt.Fprintf(&b, "\nUnreachable sources: %s", strings.Join(report.FailedSources, ", "))
	}
	if report.Stopped {
		b.WriteString("\nRun was stopped before finishing.")
	}

	color := discordGreenColor
	if report.Errors > 0 || len(report.FailedSources) > 0 || report.Stopped {
		color = discordYellowColor
	}

	embed := discordEmbed{
		Title:       "Scan complete",
		Description: b.String(),
		Color:       color,
		Footer: discordEmbedFooter{
			Text: fmt.Sprintf("took %s", report.Duration().Round(time.Second)),
		},
		Timestamp: report.FinishedAt.Format(time.RFC3339),
	}

	return discordPayload{Embeds: []discordEmbed{embed}}
}

// Send implements notify.Channel. It applies rate limiting and retries
// transient failures; 4xx responses fail immediately.
func (d *DiscordChannel) Send(ctx context.Context, report notify.Report) error {
	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return d.sendWithRetry(ctx, report)
}

func (d *DiscordChannel) sendWithRetry(ctx context.Context, report notify.Report) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.send(ctx, report)
		if err == nil {
			return nil
		}
		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("discord rate limit hit, backing off",
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))
			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("discord webhook failed, retrying",
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry backoff: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

func (d *DiscordChannel) send(ctx context.Context, report notify.Report) error {
	jsonData, err := json.Marshal(d.buildPayload(report))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}

	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter reads retry_after from the JSON body, falling back to
// the Retry-After header, then to 5 seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr discordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}

	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}
