// Package query turns raw query strings into plus/minus term sets.
package query

import (
	"sort"
	"strings"

	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
	"github.com/gcbaptista/go-search-server/internal/tokenizer"
)

// Query is the structured form of a raw query string.
// PlusTerms are sorted and deduplicated; MinusTerms keep query order.
type Query struct {
	PlusTerms  []string
	MinusTerms []string
}

// Parser parses queries against a fixed stop-word set.
type Parser struct {
	stopWords tokenizer.StopWords
}

// NewParser creates a Parser. A nil stop-word set is allowed.
func NewParser(stopWords tokenizer.StopWords) *Parser {
	return &Parser{stopWords: stopWords}
}

// Parse validates rawQuery and splits it into plus and minus terms.
// The whole query is validated before any term is interpreted, so a failure never yields a partial Query.
func (p *Parser) Parse(rawQuery string) (Query, error) {
	if err := tokenizer.Validate(rawQuery); err != nil {
		return Query{}, err
	}

	q := Query{
		PlusTerms:  make([]string, 0),
		MinusTerms: make([]string, 0),
	}
	for _, word := range tokenizer.SplitIntoWords(rawQuery) {
		term, isMinus, err := parseTerm(rawQuery, word)
		if err != nil {
			return Query{}, err
		}
		if p.stopWords.Contains(term) {
			continue
		}
		if isMinus {
			q.MinusTerms = append(q.MinusTerms, term)
		} else {
			q.PlusTerms = append(q.PlusTerms, term)
		}
	}

	q.PlusTerms = sortUnique(q.PlusTerms)
	return q, nil
}

// parseTerm strips a leading minus from word, rejecting "-" and "--x".
func parseTerm(rawQuery, word string) (term string, isMinus bool, err error) {
	if !strings.HasPrefix(word, "-") {
		return word, false, nil
	}
	term = word[1:]
	if term == "" {
		return "", true, searcherrors.NewEmptyMinusTermError(rawQuery)
	}
	if strings.HasPrefix(term, "-") {
		return "", true, searcherrors.NewDoubleMinusError(word)
	}
	return term, true, nil
}

func sortUnique(terms []string) []string {
	sort.Strings(terms)
	unique := terms[:0]
	for _, term := range terms {
		if len(unique) == 0 || term != unique[len(unique)-1] {
			unique = append(unique, term)
		}
	}
	return unique
}
