package translate

import "github.com/kailas-cloud/kbsearch/internal/domain/termindex"

// TermMatcher resolves term matches in normalized question text.
type TermMatcher interface {
	Match(text string) []termindex.Match
}
