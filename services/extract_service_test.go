// services/extract_service_test.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func TestSanitizeCompetitors(t *testing.T) {
	tests := []struct {
		name  string
		input []CompetitorExtract
		want  []string // expected ids in order
	}{
		{
			name:  "empty input",
			input: []CompetitorExtract{},
			want:  []string{},
		},
		{
			name: "already conformant",
			input: []CompetitorExtract{
				{ID: "shopify", Position: 1, Sentiment: 80},
				{ID: "woocommerce", Position: 2, Sentiment: 60},
			},
			want: []string{"shopify", "woocommerce"},
		},
		{
			name: "gapped positions reassigned",
			input: []CompetitorExtract{
				{ID: "shopify", Position: 2, Sentiment: 80},
				{ID: "woocommerce", Position: 5, Sentiment: 60},
			},
			want: []string{"shopify", "woocommerce"},
		},
		{
			name: "unnormalized and duplicate ids",
			input: []CompetitorExtract{
				{ID: "Shopify Inc.", Position: 1, Sentiment: 80},
				{ID: "shopifyinc", Position: 2, Sentiment: 10},
				{ID: "", Position: 3, Sentiment: 50},
				{ID: "salla", Position: 4, Sentiment: 70},
			},
			want: []string{"shopifyinc", "salla"},
		},
		{
			name: "out of order by reported position",
			input: []CompetitorExtract{
				{ID: "second", Position: 2, Sentiment: 50},
				{ID: "first", Position: 1, Sentiment: 50},
			},
			want: []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeCompetitors(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d mentions, want %d", len(got), len(tt.want))
			}
			for i, mention := range got {
				if mention.ID != tt.want[i] {
					t.Errorf("mention %d id = %q, want %q", i, mention.ID, tt.want[i])
				}
				if mention.Position != i+1 {
					t.Errorf("mention %d position = %d, want %d (sequential)", i, mention.Position, i+1)
				}
			}
		})
	}
}

func TestSanitizeCompetitorsClampsSentiment(t *testing.T) {
	got := sanitizeCompetitors([]CompetitorExtract{
		{ID: "low", Position: 1, Sentiment: -5},
		{ID: "high", Position: 2, Sentiment: 140},
	})
	if got[0].Sentiment != 0 {
		t.Errorf("negative sentiment clamped to %v, want 0", got[0].Sentiment)
	}
	if got[1].Sentiment != 100 {
		t.Errorf("oversized sentiment clamped to %v, want 100", got[1].Sentiment)
	}
}

func newTestExtractionService(serverURL string) ExtractionService {
	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(serverURL),
		option.WithMaxRetries(0),
	)
	return newExtractionService(&client, "gpt-4.1", NewCostService())
}

func TestAnalyzeExtractsCompetitors(t *testing.T) {
	structured := CompetitorExtractionResponse{
		Competitors: []CompetitorExtract{
			{ID: "salla", Position: 1, Sentiment: 85, Reasoning: "الخيار الأول في الإجابة"},
			{ID: "zid", Position: 2, Sentiment: 60, Reasoning: "ذُكرت كبديل"},
		},
	}
	content, _ := json.Marshal(structured)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"choices": [{"message": {"role": "assistant", "content": %q}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 45}
		}`, string(content))
	}))
	defer server.Close()

	result := newTestExtractionService(server.URL).Analyze(context.Background(), "Salla is the leading platform, Zid is an alternative.", "best saudi ecommerce platform", "Saqr")

	if result.Error != "" {
		t.Fatalf("unexpected extraction error: %s", result.Error)
	}
	if len(result.Competitors) != 2 {
		t.Fatalf("got %d competitors, want 2", len(result.Competitors))
	}
	if result.Competitors[0].ID != "salla" || result.Competitors[0].Position != 1 {
		t.Errorf("unexpected first mention: %+v", result.Competitors[0])
	}
	if result.InputTokens != 120 || result.OutputTokens != 45 {
		t.Errorf("unexpected token counts: in=%d out=%d", result.InputTokens, result.OutputTokens)
	}
	if result.Cost <= 0 {
		t.Error("expected positive extraction cost")
	}
}

func TestAnalyzeDegradesToEmptyOnProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom"}}`))
	}))
	defer server.Close()

	result := newTestExtractionService(server.URL).Analyze(context.Background(), "any answer", "any query", "Saqr")

	if result.Error == "" {
		t.Error("expected result.Error to record the failure")
	}
	if result.Competitors == nil || len(result.Competitors) != 0 {
		t.Errorf("expected empty competitor list, got %v", result.Competitors)
	}
}
