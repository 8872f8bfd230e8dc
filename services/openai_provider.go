// services/openai_provider.go
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

type openAIProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

// NewOpenAIProvider creates an alternate answer engine backed by OpenAI's
// responses API with the web_search tool. Citations come from url_citation
// annotations on the output text.
func NewOpenAIProvider(cfg *config.Config, model string, costService CostService) AnswerEngine {
	fmt.Printf("[NewOpenAIProvider] Creating OpenAI answer engine\n")
	fmt.Printf("[NewOpenAIProvider]   - Model: %s\n", model)
	fmt.Printf("[NewOpenAIProvider]   - API: api.openai.com\n")

	return newOpenAIProvider(cfg.OpenAIAPIKey, model, "https://api.openai.com", costService)
}

func newOpenAIProvider(apiKey, model, baseURL string, costService CostService) *openAIProvider {
	return &openAIProvider{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		costService: costService,
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "openai"
}

func (p *openAIProvider) GetModel() string {
	return p.model
}

// WebSearchRequest represents the request structure for the OpenAI responses API
type WebSearchRequest struct {
	Model string          `json:"model"`
	Tools []WebSearchTool `json:"tools"`
	Input string          `json:"input"`
}

type WebSearchTool struct {
	Type string `json:"type"`
}

// WebSearchResponse represents the response from the OpenAI responses API
type WebSearchResponse struct {
	ID     string                `json:"id"`
	Object string                `json:"object"`
	Status string                `json:"status"`
	Output []WebSearchOutputItem `json:"output"`
	Usage  WebSearchUsage        `json:"usage"`
}

type WebSearchOutputItem struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Status  string             `json:"status,omitempty"`
	Content []WebSearchContent `json:"content,omitempty"`
}

type WebSearchContent struct {
	Type        string                `json:"type"`
	Text        string                `json:"text,omitempty"`
	Annotations []WebSearchAnnotation `json:"annotations,omitempty"`
}

type WebSearchAnnotation struct {
	Type       string `json:"type"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

type WebSearchUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// RunQuery executes one web-search-grounded completion.
func (p *openAIProvider) RunQuery(ctx context.Context, query string) (*GroundedAnswer, error) {
	requestBody := WebSearchRequest{
		Model: p.model,
		Tools: []WebSearchTool{
			{Type: "web_search"},
		},
		Input: query,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/responses", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("web search API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var webSearchResp WebSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&webSearchResp); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	// Extract the final message content and its citation annotations.
	responseText := ""
	citations := []models.Citation{}
	for _, output := range webSearchResp.Output {
		if output.Type != "message" {
			continue
		}
		for _, content := range output.Content {
			if content.Type != "output_text" {
				continue
			}
			responseText = content.Text
			for _, annotation := range content.Annotations {
				if annotation.Type != "url_citation" || annotation.URL == "" || annotation.Title == "" {
					continue
				}
				citations = append(citations, models.Citation{
					URI:   annotation.URL,
					Title: annotation.Title,
				})
			}
			break
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no message content found in web search response")
	}

	return &GroundedAnswer{
		Text:         responseText,
		Citations:    citations,
		InputTokens:  webSearchResp.Usage.InputTokens,
		OutputTokens: webSearchResp.Usage.OutputTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, webSearchResp.Usage.InputTokens, webSearchResp.Usage.OutputTokens, true),
	}, nil
}
