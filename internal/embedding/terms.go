package embedding

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/registry"
)

// TermAnalyzer reduces text to index terms with bleve's English analyzer
// (unicode tokenizer, lowercase, stop words removed, porter stemmer).
type TermAnalyzer struct {
	analyze func([]byte) analysis.TokenStream
}

// NewTermAnalyzer loads the English analyzer from a private bleve registry cache.
func NewTermAnalyzer() (*TermAnalyzer, error) {
	cache := registry.NewCache()
	analyzer, err := cache.AnalyzerNamed(en.AnalyzerName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q analyzer: %w", en.AnalyzerName, err)
	}
	return &TermAnalyzer{analyze: analyzer.Analyze}, nil
}

// Terms returns the analyzed terms of text in order. Text made only of stop
// words falls back to its lowercased words so it still gets a non-zero vector.
func (a *TermAnalyzer) Terms(text string) []string {
	tokens := a.analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok.Term) > 0 {
			terms = append(terms, string(tok.Term))
		}
	}
	if len(terms) == 0 {
		terms = SplitWords(strings.ToLower(text))
	}
	return terms
}

// SplitWords splits text on anything that is not a letter or digit.
func SplitWords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		return nil
	}
	return words
}
