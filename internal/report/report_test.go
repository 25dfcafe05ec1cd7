package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/report"
)

func completeProfile(id, name string) profile.Profile {
	return profile.Profile{
		ID:               id,
		Name:             name,
		GroupName:        "Year 3 (2024)",
		ProfilerTypeName: "KS2 Assessment",
		Status:           profile.StatusComplete,
	}
}

func TestAggregate_DomainAndQuestionTotals(t *testing.T) {
	t.Parallel()

	profiles := []profile.Profile{
		completeProfile("p1", "Alice"),
		completeProfile("p2", "Bob"),
	}
	answers := map[string][]profile.Answer{
		"p1": {
			{ID: "a1", ProfileID: "p1", Question: "Q1", Score: 2, Domain: "Attention"},
			{ID: "a2", ProfileID: "p1", Question: "Q2", Score: 1, Domain: "Attention"},
			{ID: "a3", ProfileID: "p1", Question: "Q3", Score: 3, Domain: "Sensory"},
		},
		"p2": {
			{ID: "a4", ProfileID: "p2", Question: "Q1", Score: 1, Domain: "Attention"},
			{ID: "a5", ProfileID: "p2", Question: "Q3", Score: 2, Domain: "Sensory"},
		},
	}

	agg := report.Aggregate(profiles, answers)

	require.Len(t, agg.Profiles, 2)
	assert.Equal(t, map[string]int{"Attention": 3, "Sensory": 3}, agg.Profiles[0].DomainScores)
	assert.Equal(t, map[string]int{"Attention": 1, "Sensory": 2}, agg.Profiles[1].DomainScores)

	assert.Equal(t, map[string]int{"Attention": 4, "Sensory": 5}, agg.DomainScores)

	assert.Equal(t, report.QuestionTotal{Total: 3, Count: 2, Domain: "Attention"}, agg.QuestionTotals["Q1"])
	assert.Equal(t, report.QuestionTotal{Total: 1, Count: 1, Domain: "Attention"}, agg.QuestionTotals["Q2"])
	assert.Equal(t, report.QuestionTotal{Total: 5, Count: 2, Domain: "Sensory"}, agg.QuestionTotals["Q3"])
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate(nil, nil)

	assert.Empty(t, agg.Profiles)
	assert.Empty(t, agg.DomainScores)
	assert.Empty(t, agg.QuestionTotals)
}

func testProfiler() *catalog.Profiler {
	return &catalog.Profiler{
		Questions: []catalog.Question{
			{Question: "Q1", Domain: "Attention", Practice: catalog.PracticeRefs{"P1"}},
			{Question: "Q2", Domain: "Attention", Practice: catalog.PracticeRefs{"P1", "P2"}},
			{Question: "Q3", Domain: "Sensory", Practice: catalog.PracticeRefs{"P2"}},
			{Question: "Q4", Domain: "Sensory"},
		},
	}
}

func testTree() []catalog.PracticeCategory {
	return []catalog.PracticeCategory{
		{
			Name: "Environment",
			Children: []catalog.PracticeSubcategory{
				{ID: "P1", Name: "Low distraction", Children: []catalog.Strategy{{Text: "front seat"}, {Text: "quiet corner"}}},
			},
		},
		{
			Name: "Teaching",
			Children: []catalog.PracticeSubcategory{
				{ID: "P2", Name: "Chunk tasks", Children: []catalog.Strategy{{Text: "short steps"}}},
				{ID: "P3", Name: "Never mentioned"},
			},
		},
	}
}

func TestRecommend_SumsQuestionTotalsPerPractice(t *testing.T) {
	t.Parallel()

	// P1 is tagged on Q1 (total 3, across 2 answers) and Q2 (total 5,
	// across 1 answer): its score is the sum of totals, 8.
	totals := map[string]report.QuestionTotal{
		"Q1": {Total: 3, Count: 2, Domain: "Attention"},
		"Q2": {Total: 5, Count: 1, Domain: "Attention"},
	}

	recs := report.Recommend(testProfiler(), testTree(), totals)

	require.Len(t, recs, 2)
	assert.Equal(t, "P1", recs[0].ID)
	assert.Equal(t, 8, recs[0].Score)
	assert.Equal(t, []string{"Environment"}, recs[0].Categories)
	assert.Equal(t, []string{"front seat", "quiet corner"}, recs[0].Strategies)

	// P2 only sees Q2's total; Q3 was never answered.
	assert.Equal(t, "P2", recs[1].ID)
	assert.Equal(t, 5, recs[1].Score)
}

func TestRecommend_SortsDescendingTiesKeepTreeOrder(t *testing.T) {
	t.Parallel()

	totals := map[string]report.QuestionTotal{
		"Q1": {Total: 5, Count: 1, Domain: "Attention"},
		"Q3": {Total: 5, Count: 1, Domain: "Sensory"},
	}

	recs := report.Recommend(testProfiler(), testTree(), totals)

	require.Len(t, recs, 2)
	assert.Equal(t, "P1", recs[0].ID, "tie broken by tree encounter order")
	assert.Equal(t, "P2", recs[1].ID)
	assert.Equal(t, recs[0].Score, recs[1].Score)
}

func TestRecommend_OmitsUnscoredSubcategories(t *testing.T) {
	t.Parallel()

	totals := map[string]report.QuestionTotal{
		"Q1": {Total: 2, Count: 1, Domain: "Attention"},
	}

	recs := report.Recommend(testProfiler(), testTree(), totals)

	require.Len(t, recs, 1)
	assert.Equal(t, "P1", recs[0].ID)
}

func TestRecommend_DegradesToEmpty(t *testing.T) {
	t.Parallel()

	totals := map[string]report.QuestionTotal{"Q1": {Total: 2, Count: 1}}

	assert.Empty(t, report.Recommend(nil, testTree(), totals))
	assert.Empty(t, report.Recommend(testProfiler(), nil, totals))
	assert.Empty(t, report.Recommend(testProfiler(), testTree(), nil))
}
