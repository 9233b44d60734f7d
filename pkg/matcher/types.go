package matcher

// Pattern is one tagged scoring rule. Keywords are matched as case-insensitive
// substrings of the normalized text, Regexes against the raw text. Each hit
// adds the corresponding weight to the pattern's score.
type Pattern struct {
	Name          string   `json:"name"`
	Keywords      []string `json:"keywords"`
	Regexes       []string `json:"regexes"`
	KeywordWeight float64  `json:"keyword_weight"`
	RegexWeight   float64  `json:"regex_weight"`
}

type Match struct {
	Term   string  `json:"term"`
	Kind   string  `json:"kind"` // "keyword" or "regex"
	Weight float64 `json:"weight"`
}

type Result struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Matches []Match `json:"matches"`
}

type IMatcher interface {
	Score(text string) []Result
	Best(text string) (Result, bool)
	Len() int
}
