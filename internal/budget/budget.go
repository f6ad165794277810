// Package budget provides token budget estimation and context trimming for the
// answer prompt. Because the service supports multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters of English prose.
package budget

import (
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// perDocumentOverhead covers the "[Document N]:" label and separators
	// around each retrieved paragraph.
	perDocumentOverhead = 6

	// DefaultMaxContextTokens is the default input budget in tokens. It fits
	// 8k-context models such as llama-3.1-8b-instant with room for the answer.
	// Override via LLM_CONTEXT_TOKENS; zero disables trimming.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimDocuments fits ranked documents into maxTokens alongside a fixed
// overhead (system message, instructions, question). Documents are kept in
// rank order; the first one that does not fit is cut to the remaining budget
// and everything ranked below it is dropped.
//
// The top document is always kept, truncated if necessary, so the model
// never receives an empty context for a query that matched something.
// maxTokens <= 0 disables trimming.
func TrimDocuments(overhead int, docs []string, maxTokens int) []string {
	if maxTokens <= 0 || len(docs) == 0 {
		return docs
	}

	remaining := maxTokens - overhead
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		cost := Estimate(d) + perDocumentOverhead
		if cost <= remaining {
			out = append(out, d)
			remaining -= cost
			continue
		}
		if room := (remaining - perDocumentOverhead) * charsPerToken; room > 0 {
			out = append(out, truncate(d, room))
		}
		break
	}

	if len(out) == 0 {
		room := (maxTokens / 2) * charsPerToken
		if room < charsPerToken {
			room = charsPerToken
		}
		out = append(out, truncate(docs[0], room))
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
