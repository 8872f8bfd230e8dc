// services/anthropic_provider.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

type anthropicProvider struct {
	client      *anthropic.Client
	model       string
	costService CostService
}

// NewAnthropicProvider creates an alternate answer engine backed by Claude.
// The messages API exposes no grounding metadata, so answers carry an empty
// citation list.
func NewAnthropicProvider(cfg *config.Config, model string, costService CostService) AnswerEngine {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicProvider{
		client:      &client,
		model:       model,
		costService: costService,
	}
}

func (p *anthropicProvider) GetProviderName() string {
	return "anthropic"
}

func (p *anthropicProvider) GetModel() string {
	return p.model
}

func (p *anthropicProvider) RunQuery(ctx context.Context, query string) (*GroundedAnswer, error) {
	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: query},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   2000,
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}

	text := p.extractResponseText(*response)
	if text == "" {
		return nil, fmt.Errorf("empty answer text from Anthropic")
	}

	return &GroundedAnswer{
		Text:         text,
		Citations:    []models.Citation{},
		InputTokens:  int(response.Usage.InputTokens),
		OutputTokens: int(response.Usage.OutputTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.InputTokens), int(response.Usage.OutputTokens), false),
	}, nil
}

func (p *anthropicProvider) extractResponseText(response anthropic.Message) string {
	var textParts []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}

	return strings.Join(textParts, "")
}
