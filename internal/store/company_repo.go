// internal/store/company_repo.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saqr-hq/saqr-workflows/internal/identity"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

type companyRepo struct {
	client *Client
}

// NewCompanyRepo creates the Postgres-backed company repository.
func NewCompanyRepo(client *Client) CompanyRepository {
	return &companyRepo{client: client}
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	if !identity.ValidSlug(company.Slug) {
		return fmt.Errorf("invalid company slug %q: must match [a-z0-9]+ with length >= 3", company.Slug)
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.DB.ExecContext(ctx,
		`INSERT INTO companies (uid, name, slug, owner_id, email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		company.UID, company.Name, company.Slug, company.OwnerID, company.Email, company.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create company %s: %w", company.UID, err)
	}
	return nil
}

func (r *companyRepo) Get(ctx context.Context, uid string) (*models.Company, error) {
	var company models.Company
	err := r.client.DB.GetContext(ctx, &company,
		`SELECT uid, name, slug, owner_id, email, created_at FROM companies WHERE uid = $1`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", uid, err)
	}
	return &company, nil
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var company models.Company
	err := r.client.DB.GetContext(ctx, &company,
		`SELECT uid, name, slug, owner_id, email, created_at FROM companies WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company slug %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company by slug %s: %w", slug, err)
	}
	return &company, nil
}
