// internal/models/models.go
package models

import (
	"encoding/json"
	"time"
)

// Company is the owning tenant of queries and answers. The slug is the
// normalization key used for self-mention ("isClient") detection.
type Company struct {
	UID       string    `json:"uid" db:"uid"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Query is a stored natural-language query. Text is immutable once created;
// the only write paths are create and delete.
type Query struct {
	ID         string    `json:"id" db:"id"`
	CompanyUID string    `json:"company_uid" db:"company_uid"`
	Text       string    `json:"query" db:"query_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Citation is one grounding source attached to an answer. Legacy answer
// records stored citations as bare URI strings; UnmarshalJSON canonicalizes
// both forms so nothing downstream branches on shape.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

func (c *Citation) UnmarshalJSON(data []byte) error {
	var uri string
	if err := json.Unmarshal(data, &uri); err == nil {
		*c = Citation{URI: uri}
		return nil
	}

	type citation Citation
	var full citation
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*c = Citation(full)
	return nil
}

// CompetitorMention is one extracted company reference within an answer.
// Position is 1-based by order of mention, sentiment is a 0-100 preference
// score. Legacy records stored bare id strings; UnmarshalJSON canonicalizes.
type CompetitorMention struct {
	ID        string  `json:"id"`
	Position  int     `json:"position"`
	Sentiment float64 `json:"sentiment"`
	Reasoning string  `json:"reasoning"`
}

func (m *CompetitorMention) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*m = CompetitorMention{ID: id}
		return nil
	}

	type mention CompetitorMention
	var full mention
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*m = CompetitorMention(full)
	return nil
}

// ProviderTag identifies which answer engine produced an answer.
type ProviderTag struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// Answer is one persisted (run, extraction) pair. Answers are immutable:
// there is no update or delete path after the creating transaction commits.
type Answer struct {
	ID          string              `json:"id"`
	CompanyUID  string              `json:"company_uid"`
	QueryID     string              `json:"query_id"`
	QueryText   string              `json:"query_text"`
	RawAnswer   string              `json:"raw_answer"`
	Citations   []Citation          `json:"citations"`
	Competitors []CompetitorMention `json:"competitors"`
	CreatedAt   time.Time           `json:"created_at"`
	AIProvider  ProviderTag         `json:"ai_provider"`
	TotalCost   float64             `json:"total_cost"`
}

// DerivedRun is the per-answer view of a target company, computed by the
// aggregation engine. Position and sentiment are zero when not mentioned.
type DerivedRun struct {
	AnswerID    string     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	RawAnswer   string     `json:"raw_answer"`
	IsMentioned bool       `json:"is_mentioned"`
	Position    int        `json:"position"`
	Sentiment   float64    `json:"sentiment"`
	Reasoning   string     `json:"reasoning"`
	Citations   []Citation `json:"citations"`
}

// QuerySummary is the per-query rollup across a set of derived runs.
type QuerySummary struct {
	Visibility       int     `json:"visibility"`        // percent, rounded
	AveragePosition  float64 `json:"average_position"`  // mean over runs with position > 0
	AverageSentiment int     `json:"average_sentiment"` // rounded mean over runs with sentiment > 0
}

// CompetitorRank is one entry in the global competitor ranking for a query.
type CompetitorRank struct {
	Name        string `json:"name"` // normalized id
	Rank        int    `json:"rank"`
	Mentions    int    `json:"mentions"`
	AvgPosition string `json:"avg_position"` // one decimal, "0" when no positions seen
	IsClient    bool   `json:"is_client"`
}

// CitationRank groups citations sharing a title (or host when untitled).
type CitationRank struct {
	Title string   `json:"title"`
	URLs  []string `json:"urls"` // distinct URIs seen under this title
	Count int      `json:"count"`
}

// Rankings bundles both ranking views for a query's answer set.
type Rankings struct {
	Competitors []CompetitorRank `json:"competitors"`
	Citations   []CitationRank   `json:"citations"`
}
