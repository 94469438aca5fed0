package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength bounds URL fields; feeds have produced multi-kilobyte tracking URLs.
const maxURLLength = 2048

// ValidateURL validates the format of a URL taken from an external feed.
// Only http and https schemes are accepted and the URL must carry a host.
// Returns a ValidationError when the URL is empty or malformed.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsed.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}
