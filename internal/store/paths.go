// internal/store/paths.go
package store

import (
	"fmt"
	"strings"
)

// Collection names used in document paths. Answer records carry the query
// doc path of the query that produced them, so path shape is part of the
// storage contract and is validated before any write derived from it.
const (
	CompaniesCollection = "companies"
	QueriesCollection   = "queries"
)

// QueryDocPath builds the canonical document path for a query.
func QueryDocPath(companyUID, queryID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", CompaniesCollection, companyUID, QueriesCollection, queryID)
}

// ParseQueryDocPath validates a query document path and returns its company
// and query ids. Paths from records that predate the per-company layout
// fail here and are skipped by the pipeline rather than written against.
func ParseQueryDocPath(path string) (companyUID, queryID string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 4 {
		return "", "", fmt.Errorf("invalid query doc path %q: expected %s/<uid>/%s/<id>", path, CompaniesCollection, QueriesCollection)
	}
	if segments[0] != CompaniesCollection || segments[2] != QueriesCollection {
		return "", "", fmt.Errorf("invalid query doc path %q: wrong collection segments", path)
	}
	if segments[1] == "" || segments[3] == "" {
		return "", "", fmt.Errorf("invalid query doc path %q: empty id segment", path)
	}
	return segments[1], segments[3], nil
}
