package tokenizer

import (
	"sort"
	"strings"

	searcherrors "github.com/gcbaptista/go-search-server/internal/errors"
)

// findControlCharacter returns the byte offset of the first character in [1,31], or -1.
func findControlCharacter(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] >= 1 && text[i] <= 31 {
			return i
		}
	}
	return -1
}

// IsValidText reports whether text is free of control characters.
func IsValidText(text string) bool {
	return findControlCharacter(text) == -1
}

// Validate returns an *errors.InvalidCharacterError pointing at the first control
// character in text, or nil if the text is clean.
func Validate(text string) error {
	if pos := findControlCharacter(text); pos != -1 {
		return searcherrors.NewInvalidCharacterError(text, pos)
	}
	return nil
}

// SplitIntoWords splits text on single spaces.
// Runs of spaces collapse and leading/trailing spaces are ignored, so no empty words are returned.
func SplitIntoWords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
	if words == nil {
		return make([]string, 0) // Return empty slice instead of nil
	}
	return words
}

// StopWords is a fixed set of terms excluded from indexing and from query interpretation.
type StopWords map[string]struct{}

// NewStopWords builds a stop-word set from a list. Empty entries are ignored;
// an entry with a control character fails the whole construction.
func NewStopWords(words []string) (StopWords, error) {
	stopWords := make(StopWords, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		if err := Validate(word); err != nil {
			return nil, err
		}
		stopWords[word] = struct{}{}
	}
	return stopWords, nil
}

// ParseStopWords builds a stop-word set from a space-separated string.
func ParseStopWords(text string) (StopWords, error) {
	if err := Validate(text); err != nil {
		return nil, err
	}
	return NewStopWords(SplitIntoWords(text))
}

// Contains reports whether word is a stop word. Matching is exact and case-sensitive.
func (sw StopWords) Contains(word string) bool {
	_, ok := sw[word]
	return ok
}

// Words returns the stop words in lexicographic order.
func (sw StopWords) Words() []string {
	words := make([]string, 0, len(sw))
	for word := range sw {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// SplitIntoWordsNoStop splits text like SplitIntoWords and drops stop words.
// Validation is the caller's job.
func (sw StopWords) SplitIntoWordsNoStop(text string) []string {
	words := SplitIntoWords(text)
	kept := words[:0]
	for _, word := range words {
		if !sw.Contains(word) {
			kept = append(kept, word)
		}
	}
	return kept
}
