package source

import (
	"sort"
	"strings"
)

// ReconstructAbstract rebuilds a plain-text abstract from the word ->
// positions inverted index the concept-graph source ships instead of
// running text. Words are flattened into (word, position) pairs and sorted
// by position. When malformed input puts two words at the same position,
// ties break alphabetically so the output is at least deterministic.
// Returns "" for a nil or empty index.
func ReconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type placed struct {
		word string
		pos  int
	}

	words := make([]string, 0, len(index))
	for w := range index {
		words = append(words, w)
	}
	sort.Strings(words)

	var pairs []placed
	for _, w := range words {
		for _, pos := range index[w] {
			pairs = append(pairs, placed{word: w, pos: pos})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.word
	}
	return strings.Join(parts, " ")
}
