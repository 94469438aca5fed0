// Package classify decides whether discovered feed items are topically
// in-scope robot/AI content and assigns them a content category. The
// classifier is a pure function of its inputs and keyword configuration;
// it performs no I/O.
package classify

import (
	"regexp"
	"strings"

	"clankervids/internal/domain/entity"
)

// Rejection reasons reported in scan statistics.
const (
	ReasonAccepted      = "accepted"
	ReasonNotRelevant   = "not-relevant"
	ReasonExcludedTopic = "excluded-topic"
)

// Decision is the outcome of classifying one candidate.
type Decision struct {
	Accepted bool
	Category entity.Category
	Reason   string
}

// Classifier applies the keyword configuration to candidate titles and
// descriptions. Construct once with New and share across all source adapters;
// it is safe for concurrent use.
type Classifier struct {
	kw Keywords

	wholeWordRe  []*regexp.Regexp
	contextualRe []*regexp.Regexp
}

// New compiles the word-boundary patterns for the given keyword configuration.
func New(kw Keywords) *Classifier {
	c := &Classifier{kw: kw}
	for _, w := range kw.WholeWords {
		c.wholeWordRe = append(c.wholeWordRe, wordPattern(w))
	}
	for _, w := range kw.Contextual {
		c.contextualRe = append(c.contextualRe, wordPattern(w))
	}
	return c
}

// wordPattern matches the keyword bounded by non-word characters on both
// sides, so "spot" does not match inside "spotted".
func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
}

// Classify decides acceptance and category for one candidate. trusted marks
// items from sources whose own curation is a sufficient topical gate; trusted
// items skip the relevance keyword checks but NOT the exclude list. The
// exclude list always wins, so an off-topic item slipping through a trusted
// feed is still rejected.
func (c *Classifier) Classify(title, description string, trusted bool) Decision {
	text := strings.ToLower(title + " " + description)

	if c.matchesExclude(text) {
		return Decision{Reason: ReasonExcludedTopic}
	}

	if !trusted && !c.matchesRelevance(text) {
		return Decision{Reason: ReasonNotRelevant}
	}

	return Decision{
		Accepted: true,
		Category: c.categorize(text),
		Reason:   ReasonAccepted,
	}
}

func (c *Classifier) matchesExclude(text string) bool {
	for _, kw := range c.kw.Excludes {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// matchesRelevance checks the three signal tiers in order of cost:
// substring, whole word, contextual brand name plus helper.
func (c *Classifier) matchesRelevance(text string) bool {
	for _, kw := range c.kw.Substrings {
		if strings.Contains(text, kw) {
			return true
		}
	}

	for _, re := range c.wholeWordRe {
		if re.MatchString(text) {
			return true
		}
	}

	for _, re := range c.contextualRe {
		if !re.MatchString(text) {
			continue
		}
		for _, helper := range c.kw.ContextHelpers {
			if strings.Contains(text, helper) {
				return true
			}
		}
	}

	return false
}

// categorize assigns the content category. Fail keywords take precedence over
// battle keywords: a battle video that went wrong is a fail.
func (c *Classifier) categorize(text string) entity.Category {
	for _, kw := range c.kw.FailWords {
		if strings.Contains(text, kw) {
			return entity.CategoryFails
		}
	}
	for _, kw := range c.kw.BattleWords {
		if strings.Contains(text, kw) {
			return entity.CategoryBattles
		}
	}
	if c.kw.DefaultCategory.Valid() {
		return c.kw.DefaultCategory
	}
	return entity.CategoryHighlights
}
