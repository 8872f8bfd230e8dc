// services/aggregation_service.go
package services

import (
	"fmt"
	"math"
	"net/url"
	"sort"

	"github.com/saqr-hq/saqr-workflows/internal/identity"
	"github.com/saqr-hq/saqr-workflows/internal/models"
)

type aggregationService struct{}

// NewAggregationService creates the pure derivation layer over answer sets.
// It holds no state and performs no writes; every output is recomputable
// from the answers alone.
func NewAggregationService() AggregationService {
	return &aggregationService{}
}

// DeriveRuns produces the per-answer view of one target company.
func (s *aggregationService) DeriveRuns(answers []*models.Answer, targetNormalizedID string) []models.DerivedRun {
	target := identity.Normalize(targetNormalizedID)

	runs := make([]models.DerivedRun, 0, len(answers))
	for _, answer := range answers {
		run := models.DerivedRun{
			AnswerID:  answer.ID,
			CreatedAt: answer.CreatedAt,
			RawAnswer: answer.RawAnswer,
			Citations: answer.Citations,
		}
		for _, mention := range answer.Competitors {
			if identity.Normalize(mention.ID) != target {
				continue
			}
			run.IsMentioned = true
			run.Position = mention.Position
			run.Sentiment = mention.Sentiment
			run.Reasoning = mention.Reasoning
			break
		}
		runs = append(runs, run)
	}
	return runs
}

// Summarize rolls a derived run set up into the per-query metrics.
// Runs without a qualifying position or sentiment are excluded from the
// respective denominators, not counted as zero.
func (s *aggregationService) Summarize(runs []models.DerivedRun) models.QuerySummary {
	if len(runs) == 0 {
		return models.QuerySummary{}
	}

	mentioned := 0
	positionSum, positionCount := 0, 0
	sentimentSum, sentimentCount := 0.0, 0
	for _, run := range runs {
		if run.IsMentioned {
			mentioned++
		}
		if run.Position > 0 {
			positionSum += run.Position
			positionCount++
		}
		if run.Sentiment > 0 {
			sentimentSum += run.Sentiment
			sentimentCount++
		}
	}

	summary := models.QuerySummary{
		Visibility: int(math.Round(100 * float64(mentioned) / float64(len(runs)))),
	}
	if positionCount > 0 {
		summary.AveragePosition = float64(positionSum) / float64(positionCount)
	}
	if sentimentCount > 0 {
		summary.AverageSentiment = int(math.Round(sentimentSum / float64(sentimentCount)))
	}
	return summary
}

// RankCompetitors groups every mention across the answer set by normalized id
// and ranks by mention count descending. Equal counts break alphabetically by
// normalized id so the ranking is deterministic across runs.
func (s *aggregationService) RankCompetitors(answers []*models.Answer, clientNormalizedID string) []models.CompetitorRank {
	client := identity.Normalize(clientNormalizedID)

	type group struct {
		mentions    int
		positionSum int
	}
	groups := make(map[string]*group)
	for _, answer := range answers {
		for _, mention := range answer.Competitors {
			id := identity.Normalize(mention.ID)
			if id == "" {
				continue
			}
			g, ok := groups[id]
			if !ok {
				g = &group{}
				groups[id] = g
			}
			g.mentions++
			g.positionSum += mention.Position
		}
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if groups[ids[i]].mentions != groups[ids[j]].mentions {
			return groups[ids[i]].mentions > groups[ids[j]].mentions
		}
		return ids[i] < ids[j]
	})

	ranks := make([]models.CompetitorRank, len(ids))
	for i, id := range ids {
		g := groups[id]
		// Average over every mention, including legacy records that carry no
		// position; those pull the average toward zero rather than vanish.
		avgPosition := fmt.Sprintf("%.1f", float64(g.positionSum)/float64(g.mentions))
		ranks[i] = models.CompetitorRank{
			Name:        id,
			Rank:        i + 1,
			Mentions:    g.mentions,
			AvgPosition: avgPosition,
			IsClient:    id == client,
		}
	}
	return ranks
}

// RankCitations groups citations by title, falling back to the URL host when
// a title is missing, with distinct URIs collected per group. Equal counts
// break alphabetically by title.
func (s *aggregationService) RankCitations(answers []*models.Answer) []models.CitationRank {
	type group struct {
		count int
		urls  []string
		seen  map[string]bool
	}
	groups := make(map[string]*group)
	for _, answer := range answers {
		for _, citation := range answer.Citations {
			title := citation.Title
			if title == "" {
				title = hostOf(citation.URI)
			}
			if title == "" {
				continue
			}
			g, ok := groups[title]
			if !ok {
				g = &group{seen: make(map[string]bool)}
				groups[title] = g
			}
			g.count++
			if citation.URI != "" && !g.seen[citation.URI] {
				g.seen[citation.URI] = true
				g.urls = append(g.urls, citation.URI)
			}
		}
	}

	titles := make([]string, 0, len(groups))
	for title := range groups {
		titles = append(titles, title)
	}
	sort.Slice(titles, func(i, j int) bool {
		if groups[titles[i]].count != groups[titles[j]].count {
			return groups[titles[i]].count > groups[titles[j]].count
		}
		return titles[i] < titles[j]
	})

	ranks := make([]models.CitationRank, len(titles))
	for i, title := range titles {
		ranks[i] = models.CitationRank{
			Title: title,
			URLs:  groups[title].urls,
			Count: groups[title].count,
		}
	}
	return ranks
}

// Aggregate computes the full derived view for one query's answer set.
func (s *aggregationService) Aggregate(answers []*models.Answer, clientNormalizedID string) (*models.QuerySummary, *models.Rankings) {
	runs := s.DeriveRuns(answers, clientNormalizedID)
	summary := s.Summarize(runs)
	rankings := &models.Rankings{
		Competitors: s.RankCompetitors(answers, clientNormalizedID),
		Citations:   s.RankCitations(answers),
	}
	return &summary, rankings
}

func hostOf(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Host == "" {
		return uri
	}
	return parsed.Host
}
