// Package stats ranks and buckets named counts for the attendance reports.
package stats

import (
	"sort"
	"strings"
	"unicode"
)

// NameCount is a named tally, e.g. a band and the number of times it was seen.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SortByCount orders counts descending, breaking ties by name with a plain byte compare.
func SortByCount(counts []NameCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
}

// FromMap flattens a tally map into a slice ranked by SortByCount.
func FromMap(m map[string]int) []NameCount {
	out := make([]NameCount, 0, len(m))
	for name, cnt := range m {
		out = append(out, NameCount{Name: name, Count: cnt})
	}
	SortByCount(out)
	return out
}

// Limit truncates counts to n entries. n <= 0 keeps everything.
func Limit(counts []NameCount, n int) []NameCount {
	if n > 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}

// LetterLeaders holds the most-seen names for one initial letter. Ties are all kept.
type LetterLeaders struct {
	Letter  string      `json:"letter"`
	Leaders []NameCount `json:"leaders"`
}

// Initial returns the upper-cased first letter of name once every "The " is removed.
// ok is false when that character is not a letter.
func Initial(name string) (string, bool) {
	trimmed := strings.ReplaceAll(name, "The ", "")
	for _, r := range trimmed {
		if !unicode.IsLetter(r) {
			return "", false
		}
		return string(unicode.ToUpper(r)), true
	}
	return "", false
}

// MostByLetter finds, for each initial letter, the name or names with the highest count.
// Letters are returned in ascending order.
func MostByLetter(counts []NameCount) []LetterLeaders {
	ranked := make([]NameCount, len(counts))
	copy(ranked, counts)
	SortByCount(ranked)

	byLetter := make(map[string][]NameCount)
	for _, nc := range ranked {
		letter, ok := Initial(nc.Name)
		if !ok {
			continue
		}
		leaders := byLetter[letter]
		if len(leaders) == 0 || leaders[0].Count == nc.Count {
			byLetter[letter] = append(leaders, nc)
		}
	}

	letters := make([]string, 0, len(byLetter))
	for l := range byLetter {
		letters = append(letters, l)
	}
	sort.Strings(letters)

	out := make([]LetterLeaders, 0, len(letters))
	for _, l := range letters {
		out = append(out, LetterLeaders{Letter: l, Leaders: byLetter[l]})
	}
	return out
}
