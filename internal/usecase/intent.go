package usecase

import (
	"regexp"
	"strings"
)

// Intent is the coarse classification of a free-text message when no
// multi-turn step is pending.
type Intent int

const (
	IntentNone Intent = iota
	IntentSearch
)

// Classifier decides the intent of an incoming message. It is a capability
// boundary: the keyword matcher below can be swapped for a stricter parser
// or a model-backed classifier without touching the state machine.
type Classifier interface {
	Classify(message string) Intent
}

var searchKeywords = []string{"find", "donate", "where can"}

// KeywordClassifier matches search intent by case-insensitive substring
// scan over a fixed keyword list.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, kw := range searchKeywords {
		if strings.Contains(lower, kw) {
			return IntentSearch
		}
	}
	return IntentNone
}

// locationPattern captures everything after a case-insensitive "in "
// marker, mid-word matches included (observed matcher behavior).
var locationPattern = regexp.MustCompile(`(?i)in\s(.+)`)

// ExtractLocation pulls the search location out of a message. The second
// return is false when the message carries no "in " marker.
func ExtractLocation(message string) (string, bool) {
	m := locationPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	loc := strings.TrimSpace(m[1])
	if loc == "" {
		return "", false
	}
	return loc, true
}
