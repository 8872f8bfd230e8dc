// Package session holds the authenticated-user snapshot the pipeline operates
// on. A Session is an immutable view of the company at the moment it was
// loaded; callers that need fresher data ask for a new snapshot via Refresh.
package session

import (
	"context"
	"fmt"

	"github.com/saqr-hq/saqr-workflows/internal/models"
	"github.com/saqr-hq/saqr-workflows/internal/store"
)

// Session is a point-in-time view of the acting user and their company.
type Session struct {
	UserID  string
	Company *models.Company
}

// Load builds a session snapshot for the company owned by userID.
func Load(ctx context.Context, companies store.CompanyRepository, companyUID, userID string) (*Session, error) {
	company, err := companies.Get(ctx, companyUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session company %s: %w", companyUID, err)
	}
	return &Session{UserID: userID, Company: company}, nil
}

// Refresh returns a new snapshot of the same user and company. The receiver is
// left untouched; data read from the old snapshot stays internally consistent.
func (s *Session) Refresh(ctx context.Context, companies store.CompanyRepository) (*Session, error) {
	return Load(ctx, companies, s.Company.UID, s.UserID)
}

// CompanyName returns the display name for the session's company.
func (s *Session) CompanyName() string {
	if s.Company == nil {
		return ""
	}
	return s.Company.Name
}
