// Package textscan holds the lexical rules shared by ingestion and query
// routing: ticket-key extraction, search keyword extraction, and query intent
// classification. It is deliberately independent of ranking so the rules can be
// swapped without touching scoring code.
package textscan

import (
	"regexp"
	"sort"
	"strings"
)

var ticketKeyRegex = regexp.MustCompile(`\b([A-Z]{2,10}-[0-9]+)\b`)

var wordRegex = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

var ticketVocab = []string{
	"ticket", "tickets", "bug", "bugs", "issue", "issues", "sprint",
	"backlog", "epic", "story", "jira", "assignee", "blocker",
}

var codeVocab = []string{
	"function", "class", "method", "import", "code", "implementation",
	"implemented", "file", "module", "api", "endpoint", "commit", "refactor",
}

const maxKeywords = 20

// ExtractTicketKeys returns the distinct ticket-key-shaped tokens found in
// text, in order of first appearance.
func ExtractTicketKeys(text string) []string {
	matches := ticketKeyRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		keys = append(keys, m)
	}
	return keys
}

// ExtractKeywords lower-cases the text, drops stop words and tokens of length
// <= 2, dedupes, and caps the result at 20 terms. The output is sorted so that
// keyword sets are deterministic regardless of input order.
func ExtractKeywords(text string) []string {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		seen[w] = struct{}{}
	}
	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// Intent is the lexical classification of a question.
type Intent struct {
	HasTicketKey bool `json:"has_ticket_key"`
	TicketIntent bool `json:"ticket_intent"`
	CodeIntent   bool `json:"code_intent"`
}

// ClassifyQuery applies the fixed vocabularies and the ticket-key pattern to a
// question. A question can carry both intents; the router resolves priority.
func ClassifyQuery(question string) Intent {
	lower := strings.ToLower(question)
	intent := Intent{
		HasTicketKey: ticketKeyRegex.MatchString(question),
	}
	for _, term := range ticketVocab {
		if containsWord(lower, term) {
			intent.TicketIntent = true
			break
		}
	}
	for _, term := range codeVocab {
		if containsWord(lower, term) {
			intent.CodeIntent = true
			break
		}
	}
	if intent.HasTicketKey {
		intent.TicketIntent = true
	}
	return intent
}

func containsWord(lower, term string) bool {
	idx := 0
	for {
		pos := strings.Index(lower[idx:], term)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		leftOK := start == 0 || !isWordChar(lower[start-1])
		rightOK := end == len(lower) || !isWordChar(lower[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(lower) {
			return false
		}
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
