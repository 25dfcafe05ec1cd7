// Package report turns raw per-question answers into domain score totals
// and ranked practice recommendations.
package report

import (
	"sort"

	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/profile"
)

// ProfileScores is one Complete profile with its per-domain score totals.
type ProfileScores struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DomainScores map[string]int `json:"domain_scores"`
}

// QuestionTotal accumulates one question's scores across all profiles in
// a group.
type QuestionTotal struct {
	Total  int
	Count  int
	Domain string
}

// Recommendation is a suggested practice, ranked by accumulated score.
type Recommendation struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Score      int      `json:"score"`
	Categories []string `json:"categories"`
	Strategies []string `json:"strategies"`
}

// Aggregation is the domain-level half of a group report.
type Aggregation struct {
	Profiles       []ProfileScores
	DomainScores   map[string]int
	QuestionTotals map[string]QuestionTotal
}

// Aggregate sums answer scores per domain for each profile and accumulates
// group-level domain and per-question totals. Callers pass only Complete
// profiles; Incomplete ones must never influence the aggregate.
func Aggregate(profiles []profile.Profile, answersByProfile map[string][]profile.Answer) *Aggregation {
	agg := &Aggregation{
		Profiles:       make([]ProfileScores, 0, len(profiles)),
		DomainScores:   map[string]int{},
		QuestionTotals: map[string]QuestionTotal{},
	}

	for _, p := range profiles {
		scores := ProfileScores{
			ID:           p.ID,
			Name:         p.Name,
			DomainScores: map[string]int{},
		}

		for _, a := range answersByProfile[p.ID] {
			scores.DomainScores[a.Domain] += a.Score
			agg.DomainScores[a.Domain] += a.Score

			qt := agg.QuestionTotals[a.Question]
			qt.Total += a.Score
			qt.Count++
			qt.Domain = a.Domain
			agg.QuestionTotals[a.Question] = qt
		}

		agg.Profiles = append(agg.Profiles, scores)
	}

	return agg
}

type practiceScore struct {
	total int
	count int
}

// Recommend joins question totals through the catalog's question->practice
// mapping and resolves the result against the practice tree. Each tagged
// practice id accumulates the question's total score (not its mean, and
// not divided by the number of tags). Only subcategories with at least one
// scored mention are emitted, sorted descending by score; ties keep the
// tree's encounter order.
func Recommend(def *catalog.Profiler, tree []catalog.PracticeCategory, totals map[string]QuestionTotal) []Recommendation {
	recommendations := []Recommendation{}
	if def == nil || len(tree) == 0 {
		return recommendations
	}

	scores := map[string]practiceScore{}
	for _, q := range def.Questions {
		if len(q.Practice) == 0 {
			continue
		}
		qt, ok := totals[q.Question]
		if !ok || qt.Count == 0 {
			continue
		}
		for _, id := range q.Practice {
			ps := scores[id]
			ps.total += qt.Total
			ps.count++
			scores[id] = ps
		}
	}

	for _, category := range tree {
		for _, sub := range category.Children {
			ps, ok := scores[sub.ID]
			if !ok || ps.count == 0 {
				continue
			}

			strategies := make([]string, 0, len(sub.Children))
			for _, child := range sub.Children {
				strategies = append(strategies, child.Text)
			}

			recommendations = append(recommendations, Recommendation{
				ID:         sub.ID,
				Name:       sub.Name,
				Score:      ps.total,
				Categories: []string{category.Name},
				Strategies: strategies,
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	return recommendations
}
