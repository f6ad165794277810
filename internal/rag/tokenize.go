package rag

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text, splits it on every rune that is not a letter,
// digit or underscore, and drops stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// stopwords is the English stopword list applied by Tokenize. Single letters
// and digits are included because they carry no ranking signal on their own.
var stopwords = toSet(
	"about", "above", "after", "again", "all", "also", "am", "an", "and",
	"another", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "came", "can",
	"cannot", "come", "could", "did", "do", "does", "doing", "during",
	"each", "few", "for", "from", "further", "get", "got", "has", "had",
	"he", "have", "her", "here", "him", "himself", "his", "how", "if", "in",
	"into", "is", "it", "its", "itself", "like", "make", "many", "me",
	"might", "more", "most", "much", "must", "my", "myself", "never", "now",
	"of", "on", "only", "or", "other", "our", "ours", "ourselves", "out",
	"over", "own", "said", "same", "see", "should", "since", "so", "some",
	"still", "such", "take", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "way",
	"we", "well", "were", "what", "where", "when", "which", "while", "who",
	"whom", "with", "would", "why", "you", "your", "yours", "yourself",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n",
	"o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "_",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
