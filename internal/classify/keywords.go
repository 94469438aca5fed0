package classify

import "clankervids/internal/domain/entity"

// Keywords is the single versioned keyword configuration shared by every
// source adapter. The lists are swappable per run; the defaults below mirror
// the curation rules the site has been running in production.
type Keywords struct {
	// Substrings accept on a plain substring match. Only unambiguous phrases
	// belong here ("robot arm", "boston dynamics").
	Substrings []string `yaml:"substrings"`

	// WholeWords are short tokens that would false-positive as substrings
	// ("ai" inside "maid", "drone" inside "dronestrike" is fine but "spot"
	// inside "spotted" is not) and therefore match on word boundaries only.
	WholeWords []string `yaml:"whole_words"`

	// Contextual are brand or product names that are ambiguous on their own
	// (Atlas, Spot, Digit). They match as whole words and only count when at
	// least one ContextHelpers term co-occurs in the same text.
	Contextual []string `yaml:"contextual"`

	// ContextHelpers are the independent second-signal terms for Contextual.
	ContextHelpers []string `yaml:"context_helpers"`

	// Excludes reject on substring match regardless of any accept signal.
	Excludes []string `yaml:"excludes"`

	// FailWords and BattleWords drive categorization. FailWords win when both
	// match.
	FailWords   []string `yaml:"fail_words"`
	BattleWords []string `yaml:"battle_words"`

	// DefaultCategory is assigned when no category keyword matches.
	DefaultCategory entity.Category `yaml:"default_category"`
}

// DefaultKeywords returns the production keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Substrings: []string{
			// Core robot terms
			"robot", "robotic", "humanoid", "droid",
			"battlebots", "battlebot",
			// Brands and companies
			"boston dynamics", "tesla bot", "tesla optimus",
			"unitree", "agility robotics", "1x technologies",
			"figure robot", "sanctuary ai",
			"apptronik", "physical intelligence",
			// Robot types
			"quadruped", "exoskeleton", "bionic", "cyborg",
			"robot arm", "robot dog", "robot hand",
			"warehouse robot", "delivery robot", "surgical robot",
			"industrial robot", "cobot",
			// Drone terms
			"quadcopter", "multicopter", "unmanned aerial",
			"drone swarm", "drone show", "drone fail",
			// AI terms
			"artificial intelligence", "machine learning",
			"self-driving", "neural network", "chatgpt",
			"servo", "actuator",
		},
		WholeWords: []string{
			"ai", "drone", "drones", "gpt", "neural", "android",
			"autonomous", "mechanical", "fpv", "uav",
		},
		Contextual: []string{
			"atlas", "spot", "optimus", "figure", "digit",
			"neo", "ameca", "agility", "nao", "pepper",
		},
		ContextHelpers: []string{
			"robot", "humanoid", "boston dynamics", "unitree", "tesla",
			"walking", "bipedal", "legged", "autonomous", "ai", "drone",
			"robotic", "arm", "manipulation",
		},
		Excludes: []string{
			"kitten", "puppy", "baby",
			"cooking", "recipe", "makeup", "fashion",
			"minecraft", "fortnite", "gaming walkthrough",
			"music video", "official video", "lyric video",
			"unboxing toy",
		},
		FailWords: []string{
			"fail", "fails", "falling", "crash", "crashed", "oops",
			"malfunction", "broken", "glitch", "shitty", "disaster",
			"explosion", "explode", "breakdown", "error", "gone wrong",
			"dropped", "tipped", "fell", "stumble",
		},
		BattleWords: []string{
			"battle", "fight", "vs", "combat", "destroy", "battlebots",
		},
		DefaultCategory: entity.CategoryHighlights,
	}
}
