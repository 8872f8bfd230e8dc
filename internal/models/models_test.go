package models_test

import (
	"encoding/json"
	"testing"

	"github.com/saqr-hq/saqr-workflows/internal/models"
)

func TestCitationUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		expected models.Citation
	}{
		{
			name:     "object form",
			jsonBody: `{"uri": "https://example.com/a", "title": "Example"}`,
			expected: models.Citation{URI: "https://example.com/a", Title: "Example"},
		},
		{
			name:     "legacy bare string form",
			jsonBody: `"https://example.com/a"`,
			expected: models.Citation{URI: "https://example.com/a", Title: ""},
		},
		{
			name:     "object without title",
			jsonBody: `{"uri": "https://example.com/a"}`,
			expected: models.Citation{URI: "https://example.com/a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c models.Citation
			if err := json.Unmarshal([]byte(tt.jsonBody), &c); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.jsonBody, err)
			}
			if c != tt.expected {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.jsonBody, c, tt.expected)
			}
		})
	}
}

func TestCompetitorMentionUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		expected models.CompetitorMention
	}{
		{
			name:     "full object form",
			jsonBody: `{"id": "salla", "position": 2, "sentiment": 70, "reasoning": "ذكر ثانيًا"}`,
			expected: models.CompetitorMention{ID: "salla", Position: 2, Sentiment: 70, Reasoning: "ذكر ثانيًا"},
		},
		{
			name:     "legacy bare id form",
			jsonBody: `"shopify"`,
			expected: models.CompetitorMention{ID: "shopify"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m models.CompetitorMention
			if err := json.Unmarshal([]byte(tt.jsonBody), &m); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.jsonBody, err)
			}
			if m != tt.expected {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.jsonBody, m, tt.expected)
			}
		})
	}
}

func TestAnswerUnmarshalMixedShapes(t *testing.T) {
	// A stored answer mixing legacy string citations/competitors with the
	// current object forms must decode into one canonical shape.
	raw := `{
		"id": "ans-1",
		"query_id": "q-1",
		"citations": ["https://old.example.com", {"uri": "https://new.example.com", "title": "New"}],
		"competitors": ["legacyco", {"id": "salla", "position": 1, "sentiment": 90, "reasoning": "الأول"}]
	}`

	var a models.Answer
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("Unmarshal answer error: %v", err)
	}

	if len(a.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(a.Citations))
	}
	if a.Citations[0].URI != "https://old.example.com" || a.Citations[0].Title != "" {
		t.Errorf("legacy citation not canonicalized: %+v", a.Citations[0])
	}
	if a.Citations[1].Title != "New" {
		t.Errorf("object citation lost title: %+v", a.Citations[1])
	}

	if len(a.Competitors) != 2 {
		t.Fatalf("got %d competitors, want 2", len(a.Competitors))
	}
	if a.Competitors[0].ID != "legacyco" || a.Competitors[0].Position != 0 {
		t.Errorf("legacy competitor not canonicalized: %+v", a.Competitors[0])
	}
	if a.Competitors[1].Sentiment != 90 {
		t.Errorf("object competitor lost sentiment: %+v", a.Competitors[1])
	}
}
