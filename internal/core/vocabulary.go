package core

import (
	"sort"
)

// BuildVocabulary ranks stems by descending corpus frequency and keeps
// the first k. Every occurrence counts, not just per-message presence.
// Ties are broken by first-seen order in the corpus scan, which makes the
// vocabulary reproducible for a given corpus and k. Fewer than k distinct
// stems yields all of them; k <= 0 yields an empty vocabulary.
func BuildVocabulary(corpus []TokenizedMessage, k int) Vocabulary {
	if k <= 0 {
		return Vocabulary{}
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, msg := range corpus {
		for _, stem := range msg {
			if _, ok := counts[stem]; !ok {
				firstSeen[stem] = len(firstSeen)
			}
			counts[stem]++
		}
	}

	stems := make([]string, 0, len(counts))
	for stem := range counts {
		stems = append(stems, stem)
	}
	sort.Slice(stems, func(i, j int) bool {
		if counts[stems[i]] != counts[stems[j]] {
			return counts[stems[i]] > counts[stems[j]]
		}
		return firstSeen[stems[i]] < firstSeen[stems[j]]
	})

	if len(stems) > k {
		stems = stems[:k]
	}
	return Vocabulary(stems)
}
