// internal/store/answer_repo.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saqr-hq/saqr-workflows/internal/models"
)

type answerRepo struct {
	client *Client
}

// NewAnswerRepo creates the Postgres-backed answer repository.
func NewAnswerRepo(client *Client) AnswerRepository {
	return &answerRepo{client: client}
}

// Create inserts one answer record inside its own transaction. The insert is
// all-or-nothing; there is no idempotency key, so re-processing the same run
// produces a second record.
func (r *answerRepo) Create(ctx context.Context, answer *models.Answer) error {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now().UTC()
	}
	if answer.Citations == nil {
		answer.Citations = []models.Citation{}
	}
	if answer.Competitors == nil {
		answer.Competitors = []models.CompetitorMention{}
	}

	citations, err := json.Marshal(answer.Citations)
	if err != nil {
		return fmt.Errorf("failed to encode citations: %w", err)
	}
	competitors, err := json.Marshal(answer.Competitors)
	if err != nil {
		return fmt.Errorf("failed to encode competitors: %w", err)
	}

	tx, err := r.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin answer transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO company_answers
		 (id, company_uid, query_id, query_text, raw_answer, citations, competitors, provider_id, provider_model, total_cost, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		answer.ID, answer.CompanyUID, answer.QueryID, answer.QueryText, answer.RawAnswer,
		citations, competitors, answer.AIProvider.ID, answer.AIProvider.Model, answer.TotalCost, answer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer %s: %w", answer.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer %s: %w", answer.ID, err)
	}
	return nil
}

func (r *answerRepo) ListByQuery(ctx context.Context, companyUID, queryID string) ([]*models.Answer, error) {
	rows, err := r.client.DB.QueryxContext(ctx,
		`SELECT id, company_uid, query_id, query_text, raw_answer, citations, competitors, provider_id, provider_model, total_cost, created_at
		 FROM company_answers
		 WHERE company_uid = $1 AND query_id = $2
		 ORDER BY created_at DESC`, companyUID, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for query %s: %w", queryID, err)
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		var (
			answer          models.Answer
			citationsJSON   []byte
			competitorsJSON []byte
		)
		err := rows.Scan(
			&answer.ID, &answer.CompanyUID, &answer.QueryID, &answer.QueryText, &answer.RawAnswer,
			&citationsJSON, &competitorsJSON, &answer.AIProvider.ID, &answer.AIProvider.Model,
			&answer.TotalCost, &answer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer row: %w", err)
		}
		// Canonicalizes legacy string-shaped citations/competitors at read
		// time; the rest of the pipeline only sees one shape.
		if err := json.Unmarshal(citationsJSON, &answer.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations for answer %s: %w", answer.ID, err)
		}
		if err := json.Unmarshal(competitorsJSON, &answer.Competitors); err != nil {
			return nil, fmt.Errorf("failed to decode competitors for answer %s: %w", answer.ID, err)
		}
		answers = append(answers, &answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading answer rows: %w", err)
	}
	return answers, nil
}
