// internal/store/query_repo.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saqr-hq/saqr-workflows/internal/models"
)

type queryRepo struct {
	client *Client
}

// NewQueryRepo creates the Postgres-backed query repository.
func NewQueryRepo(client *Client) QueryRepository {
	return &queryRepo{client: client}
}

func (r *queryRepo) Create(ctx context.Context, query *models.Query) error {
	if query.ID == "" {
		query.ID = uuid.New().String()
	}
	if query.CreatedAt.IsZero() {
		query.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.DB.ExecContext(ctx,
		`INSERT INTO company_queries (id, company_uid, query_text, created_at)
		 VALUES ($1, $2, $3, $4)`,
		query.ID, query.CompanyUID, query.Text, query.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create query %s: %w", query.ID, err)
	}
	return nil
}

func (r *queryRepo) Delete(ctx context.Context, companyUID, queryID string) error {
	_, err := r.client.DB.ExecContext(ctx,
		`DELETE FROM company_queries WHERE company_uid = $1 AND id = $2`, companyUID, queryID)
	if err != nil {
		return fmt.Errorf("failed to delete query %s: %w", queryID, err)
	}
	return nil
}

func (r *queryRepo) ListByCompany(ctx context.Context, companyUID string) ([]*StoredQuery, error) {
	var rows []models.Query
	err := r.client.DB.SelectContext(ctx, &rows,
		`SELECT id, company_uid, query_text, created_at
		 FROM company_queries WHERE company_uid = $1 ORDER BY created_at`, companyUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries for company %s: %w", companyUID, err)
	}
	return withDocPaths(rows), nil
}

func (r *queryRepo) ListAll(ctx context.Context) ([]*StoredQuery, error) {
	var rows []models.Query
	err := r.client.DB.SelectContext(ctx, &rows,
		`SELECT id, company_uid, query_text, created_at
		 FROM company_queries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list all queries: %w", err)
	}
	return withDocPaths(rows), nil
}

func withDocPaths(rows []models.Query) []*StoredQuery {
	stored := make([]*StoredQuery, len(rows))
	for i := range rows {
		query := rows[i]
		stored[i] = &StoredQuery{
			Query:   &query,
			DocPath: QueryDocPath(query.CompanyUID, query.ID),
		}
	}
	return stored
}
