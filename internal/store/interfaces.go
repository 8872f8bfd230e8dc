// internal/store/interfaces.go
package store

import (
	"context"

	"github.com/saqr-hq/saqr-workflows/internal/models"
)

// CompanyRepository provides access to company documents.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	Get(ctx context.Context, uid string) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
}

// QueryRepository provides access to query documents under companies.
// StoredQuery carries the document path so callers can validate ownership.
type QueryRepository interface {
	Create(ctx context.Context, query *models.Query) error
	Delete(ctx context.Context, companyUID, queryID string) error
	ListByCompany(ctx context.Context, companyUID string) ([]*StoredQuery, error)
	ListAll(ctx context.Context) ([]*StoredQuery, error)
}

// AnswerRepository provides access to immutable answer documents.
type AnswerRepository interface {
	// Create inserts exactly one answer inside its own transaction.
	Create(ctx context.Context, answer *models.Answer) error
	ListByQuery(ctx context.Context, companyUID, queryID string) ([]*models.Answer, error)
}

// StoredQuery is a query document together with its storage path.
type StoredQuery struct {
	Query   *models.Query
	DocPath string
}

// Manager bundles all repositories behind one constructor, mirroring how
// services receive their persistence dependencies.
type Manager struct {
	client    *Client
	Companies CompanyRepository
	Queries   QueryRepository
	Answers   AnswerRepository
}

// NewManager creates a repository manager backed by the given client.
func NewManager(client *Client) *Manager {
	return &Manager{
		client:    client,
		Companies: NewCompanyRepo(client),
		Queries:   NewQueryRepo(client),
		Answers:   NewAnswerRepo(client),
	}
}
