// services/extract_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/identity"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

const extractionModel = "gpt-4.1"

type extractionService struct {
	openAIClient *openai.Client
	model        string
	costService  CostService
}

// NewExtractionService creates the competitor-mention extractor. Failures
// degrade to an empty competitor list; they never surface to the pipeline.
func NewExtractionService(cfg *config.Config, costService CostService) ExtractionService {
	fmt.Printf("[NewExtractionService] Creating service with OpenAI key (length: %d)\n", len(cfg.OpenAIAPIKey))

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return newExtractionService(&client, extractionModel, costService)
}

func newExtractionService(client *openai.Client, model string, costService CostService) ExtractionService {
	return &extractionService{
		openAIClient: client,
		model:        model,
		costService:  costService,
	}
}

// CompetitorExtractionResponse represents the structured output from OpenAI
type CompetitorExtractionResponse struct {
	Competitors []CompetitorExtract `json:"competitors" jsonschema_description:"Every distinct company mentioned in the answer, in order of first mention"`
}

type CompetitorExtract struct {
	ID        string  `json:"id" jsonschema_description:"Company identifier: lowercase letters and digits only, no spaces or punctuation"`
	Position  int     `json:"position" jsonschema_description:"1-based order of first mention, strictly sequential with no gaps and no decimals"`
	Sentiment float64 `json:"sentiment" jsonschema_description:"How favorably the answer treats this company, 0 to 100"`
	Reasoning string  `json:"reasoning" jsonschema_description:"Short justification in Arabic for the position and sentiment"`
}

// Generate the JSON schema at initialization time
var CompetitorExtractionSchema = GenerateSchema[CompetitorExtractionResponse]()

func (s *extractionService) Analyze(ctx context.Context, rawText, queryText, clientName string) *ExtractionResult {
	result := &ExtractionResult{
		Competitors: []models.CompetitorMention{},
		Model:       s.model,
	}

	prompt := s.buildExtractionPrompt(rawText, queryText, clientName)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "competitor_extraction",
		Description: openai.String("Extract company mentions with position and sentiment from an AI answer"),
		Schema:      CompetitorExtractionSchema,
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a market analyst. Extract company mentions accurately and comprehensively from AI-generated answers."),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(s.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, params)
	if err != nil {
		result.Error = fmt.Sprintf("extraction call failed: %v", err)
		fmt.Printf("[Analyze] Extraction failed, returning empty competitor list: %v\n", err)
		return result
	}

	result.InputTokens = int(chatResponse.Usage.PromptTokens)
	result.OutputTokens = int(chatResponse.Usage.CompletionTokens)
	result.Cost = s.costService.CalculateCost("openai", s.model, result.InputTokens, result.OutputTokens, false)

	if len(chatResponse.Choices) == 0 {
		result.Error = "no response choices returned from OpenAI"
		return result
	}

	var extracted CompetitorExtractionResponse
	if err := json.Unmarshal([]byte(chatResponse.Choices[0].Message.Content), &extracted); err != nil {
		// Should never happen with structured outputs
		result.Error = fmt.Sprintf("failed to parse extraction response: %v", err)
		fmt.Printf("[Analyze] Failed to parse JSON: %v\n", err)
		return result
	}

	result.Competitors = sanitizeCompetitors(extracted.Competitors)

	fmt.Printf("[Analyze] Successfully extracted %d competitors\n", len(result.Competitors))
	return result
}

// sanitizeCompetitors enforces what the prompt only instructs: normalized
// non-empty ids, unique first-wins within one extraction, sentiment clamped
// to [0,100], and positions reassigned 1..k by reported order of mention.
func sanitizeCompetitors(extracted []CompetitorExtract) []models.CompetitorMention {
	kept := make([]CompetitorExtract, 0, len(extracted))
	seen := make(map[string]bool)
	for _, c := range extracted {
		id := identity.Normalize(c.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		c.ID = id
		if c.Sentiment < 0 {
			c.Sentiment = 0
		}
		if c.Sentiment > 100 {
			c.Sentiment = 100
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Position < kept[j].Position
	})

	mentions := make([]models.CompetitorMention, len(kept))
	for i, c := range kept {
		mentions[i] = models.CompetitorMention{
			ID:        c.ID,
			Position:  i + 1,
			Sentiment: c.Sentiment,
			Reasoning: c.Reasoning,
		}
	}
	return mentions
}

func (s *extractionService) buildExtractionPrompt(rawText, queryText, clientName string) string {
	return fmt.Sprintf(`## Client Company: %s

## Context
Analyze the AI-generated answer below and extract every company it mentions, including the client company if present.

## Key Rules:
- "id" is the company name lowercased with everything except letters and digits removed (e.g. "Shopify Inc." -> "shopifyinc")
- "position" is the order of first mention: the first company mentioned gets 1, the next 2, and so on. Whole numbers only, no gaps
- "sentiment" scores how favorably the answer treats the company, from 0 (dismissed) to 100 (strongly recommended)
- "reasoning" must be written in Arabic
- Do not invent companies that are not in the answer; if none are mentioned, return an empty list

## Question Asked:
%s

## Answer to Analyze:
%s`,
		clientName, queryText, rawText)
}
