// Package config defines the curator configuration: which sources to scan,
// which keywords qualify a candidate, and how scoring weighs engagement.
// Configuration is loaded from a YAML file; every field has a compiled-in
// default so the curator runs usefully with no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"clankervids/internal/classify"
	"clankervids/internal/usecase/rank"
)

// Source kinds understood by the scan pipeline.
const (
	KindReddit        = "reddit"
	KindYouTubeRSS    = "youtube-rss"
	KindYouTubeSearch = "youtube-search"
)

// SourceConfig describes one content source.
type SourceConfig struct {
	// Name identifies the source in logs, metrics, and scan reports
	Name string `yaml:"name"`

	// Kind selects the adapter: reddit, youtube-rss, or youtube-search
	Kind string `yaml:"kind"`

	// Trusted sources skip the relevance keyword check. Their content is
	// assumed on topic; the exclude list still applies.
	Trusted bool `yaml:"trusted,omitempty"`

	// Subreddit is the subreddit name for reddit sources
	Subreddit string `yaml:"subreddit,omitempty"`

	// FeedURL is the channel feed URL for youtube-rss sources
	FeedURL string `yaml:"feed_url,omitempty"`

	// Queries are the search terms for youtube-search sources
	Queries []string `yaml:"queries,omitempty"`

	// PageSize overrides the global scan_limit for this source when positive
	PageSize int `yaml:"page_size,omitempty"`
}

// Config is the full curator configuration.
type Config struct {
	Sources  []SourceConfig    `yaml:"sources"`
	Keywords classify.Keywords `yaml:"keywords"`
	Weights  rank.Weights      `yaml:"weights"`

	// ScanLimit is the per-source page size for the primary listing pass.
	// The secondary pass uses half of it.
	ScanLimit int `yaml:"scan_limit"`

	// SourceDelay is the pause between sources during a scan, keeping the
	// whole run under anonymous API rate limits.
	SourceDelay Duration `yaml:"source_delay"`
}

// Duration wraps time.Duration so YAML configs can say "1s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Validate checks the parts of the configuration that would make a scan
// misbehave silently.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		seen[src.Name] = true

		switch src.Kind {
		case KindReddit:
			if src.Subreddit == "" {
				return fmt.Errorf("source %q: subreddit is required for kind reddit", src.Name)
			}
		case KindYouTubeRSS:
			if src.FeedURL == "" {
				return fmt.Errorf("source %q: feed_url is required for kind youtube-rss", src.Name)
			}
		case KindYouTubeSearch:
			if len(src.Queries) == 0 {
				return fmt.Errorf("source %q: queries are required for kind youtube-search", src.Name)
			}
		default:
			return fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
		}
	}
	if c.ScanLimit <= 0 {
		return fmt.Errorf("scan_limit must be positive, got %d", c.ScanLimit)
	}
	if c.SourceDelay < 0 {
		return fmt.Errorf("source_delay must not be negative, got %v", c.SourceDelay)
	}
	return nil
}

// Load reads configuration from path. A missing file yields the defaults;
// a present but invalid file is an error, not a silent fallback.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by CURATOR_CONFIG, or the defaults when
// the variable is unset.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CURATOR_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Default returns the production source list and keyword set.
func Default() *Config {
	return &Config{
		Sources:     defaultSources(),
		Keywords:    classify.DefaultKeywords(),
		Weights:     rank.DefaultWeights(),
		ScanLimit:   30,
		SourceDelay: Duration(time.Second),
	}
}

// defaultSources is the curated subreddit lineup. Trusted subs are
// robot-only communities where everything qualifies; the rest are viral
// crossover subs filtered by keyword.
func defaultSources() []SourceConfig {
	reddit := func(sub string, trusted bool) SourceConfig {
		return SourceConfig{
			Name:      "r/" + sub,
			Kind:      KindReddit,
			Subreddit: sub,
			Trusted:   trusted,
		}
	}

	return []SourceConfig{
		// Core robot subs, always qualify
		reddit("shittyrobots", true),
		reddit("robotics", true),
		reddit("Battlebots", true),
		reddit("BostonDynamics", true),
		reddit("MechanicalGifs", true),
		reddit("HumanoidRobots", true),

		// Humanoid and AI subs, keyword filtered
		reddit("singularity", false),
		reddit("ArtificialIntelligence", false),
		reddit("MachineLearning", false),
		reddit("artificial", false),
		reddit("ChatGPT", false),
		reddit("OpenAI", false),

		// Drone subs
		reddit("drones", true),
		reddit("fpv", true),
		reddit("Multicopter", true),
		reddit("diydrones", true),

		// Autonomous vehicles
		reddit("autonomousvehicles", false),
		reddit("SelfDrivingCars", false),

		// Viral crossover subs, keyword filtered
		reddit("Futurology", false),
		reddit("interestingasfuck", false),
		reddit("nextfuckinglevel", false),
		reddit("Damnthatsinteresting", false),
		reddit("Whatcouldgowrong", false),
		reddit("oddlysatisfying", false),
		reddit("technology", false),
		reddit("EngineeringPorn", false),
		reddit("specializedtools", false),
		reddit("videos", false),
		reddit("gifs", false),
		reddit("geek", false),
		reddit("cyberpunk", false),
		reddit("ScienceAndTechnology", false),
		reddit("funny", false),
	}
}
