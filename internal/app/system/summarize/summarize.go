// Package summarize implements extractive text summarization for tender
// documents. Sentences are scored by normalized, stopword-filtered word
// frequency; the highest-scoring sentences are returned in their original
// order until the target word budget is reached.
//
// The approach is deliberately self-contained: tender descriptions and
// uploaded bid documents are summarized on every ingest, and a model API
// round-trip per document would dominate sync time. An external model can
// replace this later behind the same Summarize signature.
package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxWords is the target summary length in words.
const DefaultMaxWords = 120

// minSentences is the threshold below which the input is returned whole;
// there is nothing useful to extract from a paragraph of three sentences.
const minSentences = 3

var wordRe = regexp.MustCompile(`[\p{L}\p{N}']+`)

// Summarize produces an extractive summary of text no longer than
// maxWords words (0 means DefaultMaxWords). Whitespace is normalized;
// empty input yields an empty summary.
func Summarize(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	text = normalizeSpace(text)
	if text == "" {
		return ""
	}

	sentences := SplitSentences(text)
	if len(sentences) <= minSentences {
		return text
	}

	freq := wordFrequencies(text)
	type scored struct {
		idx   int
		score float64
		words int
	}

	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		words := wordRe.FindAllString(strings.ToLower(s), -1)
		if len(words) == 0 {
			continue
		}
		var sum float64
		for _, w := range words {
			sum += freq[w]
		}
		// Normalize by length so long rambling sentences don't always win.
		ranked = append(ranked, scored{idx: i, score: sum / float64(len(words)), words: len(words)})
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].idx < ranked[b].idx
	})

	// Greedily take the best sentences within the word budget, always
	// keeping at least one.
	chosen := make([]int, 0, len(ranked))
	budget := maxWords
	for _, sc := range ranked {
		if len(chosen) > 0 && sc.words > budget {
			continue
		}
		chosen = append(chosen, sc.idx)
		budget -= sc.words
		if budget <= 0 {
			break
		}
	}

	// Restore document order.
	sort.Ints(chosen)
	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = sentences[idx]
	}
	return strings.Join(parts, " ")
}

// WordCount returns the number of word tokens in text.
func WordCount(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// SplitSentences splits text on sentence-ending punctuation, keeping the
// terminator with the sentence. Common abbreviations in procurement prose
// ("no.", "e.g.", decimal amounts) survive because a split requires the
// terminator to be followed by whitespace and an upper-case letter or
// digit.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Consume trailing quote/bracket after the terminator.
		j := i + 1
		for j < len(runes) && (runes[j] == ')' || runes[j] == '"' || runes[j] == '\'') {
			j++
		}
		if j >= len(runes) {
			break
		}
		if !unicode.IsSpace(runes[j]) {
			continue
		}
		// Peek at the next non-space rune.
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k < len(runes) && !unicode.IsUpper(runes[k]) && !unicode.IsDigit(runes[k]) {
			continue
		}
		s := strings.TrimSpace(string(runes[start:j]))
		if s != "" {
			out = append(out, s)
		}
		start = k
		i = k - 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

// wordFrequencies computes stopword-filtered word frequencies normalized
// to the most frequent word.
func wordFrequencies(text string) map[string]float64 {
	counts := make(map[string]int)
	max := 0
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if stopwords[w] || len(w) < 2 {
			continue
		}
		counts[w]++
		if counts[w] > max {
			max = counts[w]
		}
	}

	freq := make(map[string]float64, len(counts))
	if max == 0 {
		return freq
	}
	for w, c := range counts {
		freq[w] = float64(c) / float64(max)
	}
	return freq
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
