package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saqr-hq/saqr-workflows/internal/models"
	"github.com/saqr-hq/saqr-workflows/internal/session"
)

type fakeCompanies struct {
	companies map[string]*models.Company
}

func (f *fakeCompanies) Create(ctx context.Context, c *models.Company) error { return nil }

func (f *fakeCompanies) Get(ctx context.Context, uid string) (*models.Company, error) {
	if c, ok := f.companies[uid]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeCompanies) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	for _, c := range f.companies {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func TestLoadAndRefresh(t *testing.T) {
	repo := &fakeCompanies{companies: map[string]*models.Company{
		"company-1": {UID: "company-1", Name: "Saqr", Slug: "saqr", OwnerID: "user-1"},
	}}

	sess, err := session.Load(context.Background(), repo, "company-1", "user-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if sess.CompanyName() != "Saqr" {
		t.Errorf("CompanyName = %q, want %q", sess.CompanyName(), "Saqr")
	}

	// Mutate the backing store; the existing snapshot must not change.
	repo.companies["company-1"].Name = "Saqr Renamed"
	if sess.CompanyName() != "Saqr" {
		t.Errorf("snapshot changed after store mutation: got %q", sess.CompanyName())
	}

	fresh, err := sess.Refresh(context.Background(), repo)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if fresh.CompanyName() != "Saqr Renamed" {
		t.Errorf("refreshed CompanyName = %q, want %q", fresh.CompanyName(), "Saqr Renamed")
	}
	if fresh.UserID != "user-1" {
		t.Errorf("refreshed UserID = %q, want %q", fresh.UserID, "user-1")
	}
}

func TestLoadMissingCompany(t *testing.T) {
	repo := &fakeCompanies{companies: map[string]*models.Company{}}
	if _, err := session.Load(context.Background(), repo, "missing", "user-1"); err == nil {
		t.Fatal("Load succeeded for missing company, want error")
	}
}
