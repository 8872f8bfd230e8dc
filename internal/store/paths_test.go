package store_test

import (
	"testing"

	"github.com/saqr-hq/saqr-workflows/internal/store"
)

func TestQueryDocPath(t *testing.T) {
	path := store.QueryDocPath("user-123", "query-abc")
	expected := "companies/user-123/queries/query-abc"
	if path != expected {
		t.Errorf("QueryDocPath() = %q, want %q", path, expected)
	}
}

func TestParseQueryDocPath(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectUID   string
		expectQuery string
		expectErr   bool
	}{
		{
			name:        "valid path",
			path:        "companies/user-123/queries/query-abc",
			expectUID:   "user-123",
			expectQuery: "query-abc",
		},
		{
			name:      "legacy top-level queries path",
			path:      "queries/query-abc",
			expectErr: true,
		},
		{
			name:      "wrong root collection",
			path:      "orgs/user-123/queries/query-abc",
			expectErr: true,
		},
		{
			name:      "wrong sub collection",
			path:      "companies/user-123/answers/query-abc",
			expectErr: true,
		},
		{
			name:      "empty company segment",
			path:      "companies//queries/query-abc",
			expectErr: true,
		},
		{
			name:      "empty path",
			path:      "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, queryID, err := store.ParseQueryDocPath(tt.path)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseQueryDocPath(%q) expected error, got uid=%q query=%q", tt.path, uid, queryID)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQueryDocPath(%q) unexpected error: %v", tt.path, err)
			}
			if uid != tt.expectUID || queryID != tt.expectQuery {
				t.Errorf("ParseQueryDocPath(%q) = (%q, %q), want (%q, %q)", tt.path, uid, queryID, tt.expectUID, tt.expectQuery)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	uid, queryID, err := store.ParseQueryDocPath(store.QueryDocPath("abc", "q1"))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if uid != "abc" || queryID != "q1" {
		t.Errorf("round trip = (%q, %q), want (abc, q1)", uid, queryID)
	}
}
