package matcher

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type compiledPattern struct {
	name          string
	keywords      []string
	regexes       []*regexp.Regexp
	keywordWeight float64
	regexWeight   float64
}

type weightedMatcher struct {
	patterns []compiledPattern
	maxScore float64
}

// New compiles a pattern set into a matcher. Scores are clamped to maxScore.
// A malformed regex is logged and skipped; it never fails construction and
// never panics during matching.
func New(patterns []Pattern, maxScore float64, log *logrus.Logger) IMatcher {
	if maxScore <= 0 {
		maxScore = 100
	}

	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		cp := compiledPattern{
			name:          p.Name,
			keywordWeight: p.KeywordWeight,
			regexWeight:   p.RegexWeight,
		}

		for _, kw := range p.Keywords {
			kw = Normalize(kw)
			if kw != "" {
				cp.keywords = append(cp.keywords, kw)
			}
		}

		for _, expr := range p.Regexes {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				if log != nil {
					log.WithFields(logrus.Fields{
						"pattern": p.Name,
						"regex":   expr,
						"error":   err.Error(),
					}).Warn("Skipping malformed regex in pattern set")
				}
				continue
			}
			cp.regexes = append(cp.regexes, re)
		}

		compiled = append(compiled, cp)
	}

	return &weightedMatcher{
		patterns: compiled,
		maxScore: maxScore,
	}
}

// Score evaluates every pattern against text and returns one result per
// pattern in declaration order.
func (m *weightedMatcher) Score(text string) []Result {
	normalized := Normalize(text)

	results := make([]Result, 0, len(m.patterns))
	for _, p := range m.patterns {
		total := 0.0
		var matches []Match

		for _, kw := range p.keywords {
			if strings.Contains(normalized, kw) {
				total += p.keywordWeight
				matches = append(matches, Match{Term: kw, Kind: "keyword", Weight: p.keywordWeight})
			}
		}

		for _, re := range p.regexes {
			if re.MatchString(text) {
				total += p.regexWeight
				matches = append(matches, Match{Term: re.String(), Kind: "regex", Weight: p.regexWeight})
			}
		}

		results = append(results, Result{
			Name:    p.name,
			Score:   math.Min(total, m.maxScore),
			Matches: matches,
		})
	}

	return results
}

// Best returns the highest-scoring pattern; ties resolve to the earliest
// declared pattern. ok is false when the set is empty or nothing scored.
func (m *weightedMatcher) Best(text string) (Result, bool) {
	results := m.Score(text)
	if len(results) == 0 {
		return Result{}, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}

	if best.Score == 0 {
		return best, false
	}

	return best, true
}

func (m *weightedMatcher) Len() int {
	return len(m.patterns)
}

// Normalize lowercases, strips diacritics, drops apostrophes so contractions
// match their keyword forms, and collapses all other punctuation to spaces.
func Normalize(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, text)

	result = strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, result)

	return strings.Join(strings.Fields(result), " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
