package matcher

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testPatterns() []Pattern {
	return []Pattern{
		{
			Name:          "pricing_inquiry",
			Keywords:      []string{"price", "cost", "rates"},
			Regexes:       []string{`how much`},
			KeywordWeight: 20,
			RegexWeight:   30,
		},
		{
			Name:          "demo_request",
			Keywords:      []string{"demo", "trial"},
			Regexes:       []string{`show me`},
			KeywordWeight: 20,
			RegexWeight:   30,
		},
	}
}

func TestScore_KeywordAndRegexWeights(t *testing.T) {
	m := New(testPatterns(), 100, logrus.New())

	results := m.Score("How much does it cost? What are your rates?")
	assert.Len(t, results, 2)

	pricing := results[0]
	assert.Equal(t, "pricing_inquiry", pricing.Name)
	// cost + rates keywords, "how much" regex
	assert.Equal(t, 70.0, pricing.Score)

	demo := results[1]
	assert.Equal(t, 0.0, demo.Score)
	assert.Empty(t, demo.Matches)
}

func TestScore_ClampedToMax(t *testing.T) {
	patterns := []Pattern{
		{
			Name:          "stacked",
			Keywords:      []string{"a", "b", "c", "d", "e", "f"},
			KeywordWeight: 30,
		},
	}
	m := New(patterns, 100, logrus.New())

	results := m.Score("a b c d e f")
	assert.Equal(t, 100.0, results[0].Score)
}

func TestBest_TieGoesToDeclarationOrder(t *testing.T) {
	patterns := []Pattern{
		{Name: "first", Keywords: []string{"hello"}, KeywordWeight: 20},
		{Name: "second", Keywords: []string{"hello"}, KeywordWeight: 20},
	}
	m := New(patterns, 100, logrus.New())

	best, ok := m.Best("hello there")
	assert.True(t, ok)
	assert.Equal(t, "first", best.Name)
}

func TestBest_NoMatch(t *testing.T) {
	m := New(testPatterns(), 100, logrus.New())

	_, ok := m.Best("completely unrelated text")
	assert.False(t, ok)
}

func TestNew_SkipsMalformedRegex(t *testing.T) {
	patterns := []Pattern{
		{
			Name:          "broken",
			Keywords:      []string{"ping"},
			Regexes:       []string{`([unclosed`},
			KeywordWeight: 20,
			RegexWeight:   30,
		},
	}
	m := New(patterns, 100, logrus.New())

	// keyword matching still works, the bad regex is simply dropped
	results := m.Score("ping")
	assert.Equal(t, 20.0, results[0].Score)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "whats the cost", Normalize("  What's   the COST?! "))
	assert.Equal(t, "cafe budget", Normalize("café budget"))
	assert.Equal(t, "dont need it", Normalize("don’t need it"))
}

func TestScore_ContractionMatchesKeyword(t *testing.T) {
	patterns := []Pattern{
		{
			Name:          "pricing",
			Keywords:      []string{"what's the cost"},
			KeywordWeight: 20,
		},
	}
	m := New(patterns, 100, logrus.New())

	results := m.Score("Whats the cost for ten seats?")
	assert.Equal(t, 20.0, results[0].Score)
}
