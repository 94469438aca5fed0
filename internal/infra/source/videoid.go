package source

import "regexp"

// youtubeIDPatterns match the 11-character video id in the URL shapes the
// sources actually emit. Order matters only for readability; ids are unique
// per URL.
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractYouTubeID returns the YouTube video id embedded in rawURL, or ""
// when the URL is not a recognizable YouTube link.
func ExtractYouTubeID(rawURL string) string {
	for _, p := range youtubeIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// WatchURL returns the canonical watch URL for a YouTube video id.
// Candidates store this instead of the raw link so the same video always
// lands on the same URL regardless of how it was shared.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
