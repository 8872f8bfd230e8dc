// services/provider_factory.go
package services

import (
	"fmt"
	"strings"

	"github.com/saqr-hq/saqr-workflows/internal/config"
)

// NewAnswerEngine returns the answer engine for the given model name.
func NewAnswerEngine(cfg *config.Config, model string, costService CostService) (AnswerEngine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	modelLower := strings.ToLower(model)

	if strings.Contains(modelLower, "gemini") {
		fmt.Printf("[NewAnswerEngine] Selected Gemini engine for model: %s\n", model)
		return NewGeminiProvider(cfg, model, costService), nil
	}

	if strings.Contains(modelLower, "gpt") || strings.Contains(modelLower, "4.1") {
		fmt.Printf("[NewAnswerEngine] Selected OpenAI engine for model: %s\n", model)
		return NewOpenAIProvider(cfg, model, costService), nil
	}

	if strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") || strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku") {
		fmt.Printf("[NewAnswerEngine] Selected Anthropic engine for model: %s\n", model)
		return NewAnthropicProvider(cfg, model, costService), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", model)
}
