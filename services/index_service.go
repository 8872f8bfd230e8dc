// services/index_service.go
package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/qdrant/go-client/qdrant"
	"github.com/typesense/typesense-go/v2/typesense"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

const (
	AnswerVectorCollection  = "answer_embeddings"
	AnswerKeywordCollection = "answers"
	embeddingModel          = "text-embedding-3-small"
)

type answerIndexService struct {
	qdrantClient    *qdrant.Client
	typesenseClient *typesense.Client
	openAIClient    *openai.Client
}

// NewAnswerIndexService mirrors persisted answers into the vector and keyword
// indexes so they are searchable from the dashboard. Indexing is best-effort;
// the pipeline logs failures and moves on.
func NewAnswerIndexService(cfg *config.Config, qdrantClient *qdrant.Client, typesenseClient *typesense.Client) AnswerIndexService {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &answerIndexService{
		qdrantClient:    qdrantClient,
		typesenseClient: typesenseClient,
		openAIClient:    &client,
	}
}

func (s *answerIndexService) IndexAnswer(ctx context.Context, companyUID string, answer *models.Answer) error {
	fmt.Printf("[AnswerIndex] Indexing answer %s for company %s\n", answer.ID, companyUID)

	vector, err := s.embed(ctx, answer.RawAnswer)
	if err != nil {
		return fmt.Errorf("failed to embed answer %s: %w", answer.ID, err)
	}

	if err := s.upsertToQdrant(ctx, companyUID, answer, vector); err != nil {
		return fmt.Errorf("failed to index answer %s in qdrant: %w", answer.ID, err)
	}

	if err := s.upsertToTypesense(ctx, companyUID, answer); err != nil {
		return fmt.Errorf("failed to index answer %s in typesense: %w", answer.ID, err)
	}

	return nil
}

func (s *answerIndexService) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.openAIClient.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: embeddingModel,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

func (s *answerIndexService) upsertToQdrant(ctx context.Context, companyUID string, answer *models.Answer, vector []float32) error {
	payload := qdrant.NewValueMap(map[string]any{
		"company_uid": companyUID,
		"query_id":    answer.QueryID,
		"query_text":  answer.QueryText,
		"created_at":  answer.CreatedAt.Unix(),
	})

	waitUpsert := true
	_, err := s.qdrantClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: AnswerVectorCollection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(answer.ID),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
		Wait: &waitUpsert,
	})
	return err
}

func (s *answerIndexService) upsertToTypesense(ctx context.Context, companyUID string, answer *models.Answer) error {
	document := map[string]interface{}{
		"id":          answer.ID,
		"company_uid": companyUID,
		"query_id":    answer.QueryID,
		"query_text":  answer.QueryText,
		"raw_answer":  answer.RawAnswer,
		"created_at":  answer.CreatedAt.Unix(),
	}

	_, err := s.typesenseClient.Collection(AnswerKeywordCollection).Documents().Upsert(ctx, document)
	return err
}
