// services/gemini_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

type geminiProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

// NewGeminiProvider creates the default answer engine: Gemini generateContent
// with Google Search grounding enabled on every call.
func NewGeminiProvider(cfg *config.Config, model string, costService CostService) AnswerEngine {
	fmt.Printf("[NewGeminiProvider] Creating Gemini provider\n")
	fmt.Printf("[NewGeminiProvider]   - Model: %s\n", model)
	fmt.Printf("[NewGeminiProvider]   - API Key: %s\n", maskAPIKey(cfg.GoogleAPIKey))

	if cfg.GoogleAPIKey == "" {
		fmt.Printf("[NewGeminiProvider] WARNING: GOOGLE_API_KEY is empty!\n")
	}

	return newGeminiProvider(cfg.GoogleAPIKey, model, "https://generativelanguage.googleapis.com/v1beta", costService)
}

func newGeminiProvider(apiKey, model, baseURL string, costService CostService) *geminiProvider {
	return &geminiProvider{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		costService: costService,
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

func (p *geminiProvider) GetProviderName() string {
	return "gemini"
}

func (p *geminiProvider) GetModel() string {
	return p.model
}

// Gemini API request structures
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
	Tools    []GeminiTool    `json:"tools,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

// Gemini API response structures
type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
}

type GeminiCandidate struct {
	Content           GeminiContent           `json:"content"`
	GroundingMetadata *GeminiGroundingDetails `json:"groundingMetadata,omitempty"`
}

type GeminiGroundingDetails struct {
	GroundingChunks []GeminiGroundingChunk `json:"groundingChunks"`
}

type GeminiGroundingChunk struct {
	Web *GeminiWebSource `json:"web,omitempty"`
}

type GeminiWebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// RunQuery executes one search-grounded completion and maps grounding chunks
// to citations. Chunks missing either a uri or a title are dropped. Exactly
// one completion request is issued per call: a failed run is dropped by the
// runner, never re-attempted at the transport level.
func (p *geminiProvider) RunQuery(ctx context.Context, query string) (*GroundedAnswer, error) {
	payload := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: query}},
			},
		},
		Tools: []GeminiTool{
			{GoogleSearch: &struct{}{}},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return p.buildAnswer(&geminiResp)
}

func (p *geminiProvider) buildAnswer(resp *GeminiResponse) (*GroundedAnswer, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}
	candidate := resp.Candidates[0]

	text := ""
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return nil, fmt.Errorf("empty answer text from Gemini")
	}

	citations := []models.Citation{}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
				continue
			}
			citations = append(citations, models.Citation{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	inputTokens, outputTokens := 0, 0
	if resp.UsageMetadata != nil {
		inputTokens = resp.UsageMetadata.PromptTokenCount
		outputTokens = resp.UsageMetadata.CandidatesTokenCount
	}

	return &GroundedAnswer{
		Text:         text,
		Citations:    citations,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, inputTokens, outputTokens, true),
	}, nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
