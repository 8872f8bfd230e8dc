// services/testutil/mocks.go
package testutil

import (
	"context"
	"sync"

	"github.com/saqr-hq/saqr-workflows/internal/models"
	"github.com/saqr-hq/saqr-workflows/internal/store"
	"github.com/saqr-hq/saqr-workflows/services"
)

// MockAnswerEngine implements services.AnswerEngine with function fields.
type MockAnswerEngine struct {
	RunQueryFunc func(ctx context.Context, query string) (*services.GroundedAnswer, error)
	Provider     string
	Model        string
}

func (m *MockAnswerEngine) RunQuery(ctx context.Context, query string) (*services.GroundedAnswer, error) {
	return m.RunQueryFunc(ctx, query)
}

func (m *MockAnswerEngine) GetProviderName() string {
	if m.Provider == "" {
		return "mock"
	}
	return m.Provider
}

func (m *MockAnswerEngine) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// MockExtractionService implements services.ExtractionService.
type MockExtractionService struct {
	AnalyzeFunc func(ctx context.Context, rawText, queryText, clientName string) *services.ExtractionResult
}

func (m *MockExtractionService) Analyze(ctx context.Context, rawText, queryText, clientName string) *services.ExtractionResult {
	return m.AnalyzeFunc(ctx, rawText, queryText, clientName)
}

// MockQueryRunner implements services.QueryRunnerService.
type MockQueryRunner struct {
	RunFunc func(ctx context.Context, configs []services.QueryRunConfig, companyUID string) ([]*services.QueryRunResult, error)
}

func (m *MockQueryRunner) Run(ctx context.Context, configs []services.QueryRunConfig, companyUID string) ([]*services.QueryRunResult, error) {
	return m.RunFunc(ctx, configs, companyUID)
}

// MockIndexService implements services.AnswerIndexService.
type MockIndexService struct {
	IndexAnswerFunc func(ctx context.Context, companyUID string, answer *models.Answer) error
}

func (m *MockIndexService) IndexAnswer(ctx context.Context, companyUID string, answer *models.Answer) error {
	if m.IndexAnswerFunc == nil {
		return nil
	}
	return m.IndexAnswerFunc(ctx, companyUID, answer)
}

// MockCompanyRepo implements store.CompanyRepository.
type MockCompanyRepo struct {
	CreateFunc    func(ctx context.Context, company *models.Company) error
	GetFunc       func(ctx context.Context, uid string) (*models.Company, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*models.Company, error)
}

func (m *MockCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	return m.CreateFunc(ctx, company)
}

func (m *MockCompanyRepo) Get(ctx context.Context, uid string) (*models.Company, error) {
	return m.GetFunc(ctx, uid)
}

func (m *MockCompanyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return m.GetBySlugFunc(ctx, slug)
}

// MockQueryRepo implements store.QueryRepository.
type MockQueryRepo struct {
	CreateFunc        func(ctx context.Context, query *models.Query) error
	DeleteFunc        func(ctx context.Context, companyUID, queryID string) error
	ListByCompanyFunc func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error)
	ListAllFunc       func(ctx context.Context) ([]*store.StoredQuery, error)
}

func (m *MockQueryRepo) Create(ctx context.Context, query *models.Query) error {
	return m.CreateFunc(ctx, query)
}

func (m *MockQueryRepo) Delete(ctx context.Context, companyUID, queryID string) error {
	return m.DeleteFunc(ctx, companyUID, queryID)
}

func (m *MockQueryRepo) ListByCompany(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
	return m.ListByCompanyFunc(ctx, companyUID)
}

func (m *MockQueryRepo) ListAll(ctx context.Context) ([]*store.StoredQuery, error) {
	return m.ListAllFunc(ctx)
}

// MockAnswerRepo implements store.AnswerRepository and records every created
// answer for assertions. Safe for concurrent Create calls.
type MockAnswerRepo struct {
	CreateFunc      func(ctx context.Context, answer *models.Answer) error
	ListByQueryFunc func(ctx context.Context, companyUID, queryID string) ([]*models.Answer, error)

	mu      sync.Mutex
	created []*models.Answer
}

func (m *MockAnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, answer); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.created = append(m.created, answer)
	m.mu.Unlock()
	return nil
}

// Created returns the answers recorded so far.
func (m *MockAnswerRepo) Created() []*models.Answer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Answer(nil), m.created...)
}

func (m *MockAnswerRepo) ListByQuery(ctx context.Context, companyUID, queryID string) ([]*models.Answer, error) {
	return m.ListByQueryFunc(ctx, companyUID, queryID)
}
