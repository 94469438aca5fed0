package classify_test

import (
	"testing"

	"clankervids/internal/classify"
	"clankervids/internal/domain/entity"
)

func TestClassify_RelevanceSignals(t *testing.T) {
	c := classify.New(classify.DefaultKeywords())

	tests := []struct {
		name        string
		title       string
		description string
		trusted     bool
		wantAccept  bool
		wantReason  string
	}{
		{
			name:       "unambiguous substring accepts",
			title:      "Boston Dynamics shows off new parkour routine",
			wantAccept: true,
			wantReason: classify.ReasonAccepted,
		},
		{
			name:       "whole word token accepts",
			title:      "This AI learned to walk in a day",
			wantAccept: true,
			wantReason: classify.ReasonAccepted,
		},
		{
			name:       "whole word token does not match inside another word",
			title:      "Rainy day maintenance on the cabin",
			wantAccept: false,
			wantReason: classify.ReasonNotRelevant,
		},
		{
			name:       "spotted does not trigger the contextual token spot",
			title:      "I spotted a rare bird on my walk",
			wantAccept: false,
			wantReason: classify.ReasonNotRelevant,
		},
		{
			name:       "contextual token with helper accepts",
			title:      "Spot the robot opens a door",
			wantAccept: true,
			wantReason: classify.ReasonAccepted,
		},
		{
			name:       "contextual token without helper rejects",
			title:      "Atlas mountains travel vlog",
			wantAccept: false,
			wantReason: classify.ReasonNotRelevant,
		},
		{
			name:       "no signal rejects untrusted",
			title:      "Tuesday livestream highlights",
			wantAccept: false,
			wantReason: classify.ReasonNotRelevant,
		},
		{
			name:       "trusted source bypasses relevance",
			title:      "Tuesday livestream highlights",
			trusted:    true,
			wantAccept: true,
			wantReason: classify.ReasonAccepted,
		},
		{
			name:       "exclude keyword overrides relevance signal",
			title:      "kitten plays with robot toy",
			wantAccept: false,
			wantReason: classify.ReasonExcludedTopic,
		},
		{
			name:       "exclude keyword overrides trusted bypass",
			title:      "our new kitten meets the vacuum",
			trusted:    true,
			wantAccept: false,
			wantReason: classify.ReasonExcludedTopic,
		},
		{
			name:        "description alone can carry the signal",
			title:       "Incredible machine",
			description: "A humanoid robot pours coffee without spilling",
			wantAccept:  true,
			wantReason:  classify.ReasonAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.title, tt.description, tt.trusted)
			if got.Accepted != tt.wantAccept {
				t.Errorf("Classify() accepted = %v, want %v", got.Accepted, tt.wantAccept)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Classify() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_CategoryPrecedence(t *testing.T) {
	c := classify.New(classify.DefaultKeywords())

	tests := []struct {
		name  string
		title string
		want  entity.Category
	}{
		{
			name:  "fail keyword wins over battle keyword",
			title: "Robot battle ends in epic fail",
			want:  entity.CategoryFails,
		},
		{
			name:  "battle keyword without fail",
			title: "Robot combat league finals",
			want:  entity.CategoryBattles,
		},
		{
			name:  "no category keyword defaults to highlights",
			title: "Robot pours a perfect latte",
			want:  entity.CategoryHighlights,
		},
		{
			name:  "fall variants count as fails",
			title: "Boston Dynamics Atlas robot falls down stairs - fail",
			want:  entity.CategoryFails,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.title, "", false)
			if !got.Accepted {
				t.Fatalf("Classify() rejected %q, reason=%s", tt.title, got.Reason)
			}
			if got.Category != tt.want {
				t.Errorf("Classify() category = %q, want %q", got.Category, tt.want)
			}
		})
	}
}

// Identical inputs and configuration must always yield identical decisions.
func TestClassify_Deterministic(t *testing.T) {
	c := classify.New(classify.DefaultKeywords())

	first := c.Classify("Unitree robot dog backflip", "slow motion", false)
	for i := 0; i < 50; i++ {
		got := c.Classify("Unitree robot dog backflip", "slow motion", false)
		if got != first {
			t.Fatalf("Classify() not deterministic: run %d got %+v, first %+v", i, got, first)
		}
	}
}

func TestClassify_CustomKeywords(t *testing.T) {
	kw := classify.Keywords{
		Substrings:      []string{"widget"},
		FailWords:       []string{"broke"},
		DefaultCategory: entity.CategoryHighlights,
	}
	c := classify.New(kw)

	if got := c.Classify("widget demo", "", false); !got.Accepted {
		t.Errorf("custom substring should accept, got %+v", got)
	}
	if got := c.Classify("robot demo", "", false); got.Accepted {
		t.Errorf("default lists must not leak into custom config, got %+v", got)
	}
	if got := c.Classify("widget broke today", "", false); got.Category != entity.CategoryFails {
		t.Errorf("custom fail word should categorize as fails, got %+v", got)
	}
}
