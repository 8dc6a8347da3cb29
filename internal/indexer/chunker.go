// Package indexer splits raw text into sentence segments and adds their
// embeddings to the vector store.
package indexer

import "strings"

// SentenceSeparator delimits segments in ingested text.
const SentenceSeparator = "."

// SplitSentences splits text on periods, normalizes whitespace in each segment and
// drops empty segments. Order is preserved.
func SplitSentences(text string) []string {
	parts := strings.Split(text, SentenceSeparator)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		seg := Preprocess(p)
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
