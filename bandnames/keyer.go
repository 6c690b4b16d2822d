package bandnames

import (
	"sort"
	"strings"
)

// keyStrip is applied in order; "the " must go before " " is removed.
var keyStrip = []string{"the ", "and ", "& ", "'", ".", "!", " "}

// Key returns the duplicate-detection key for a band name. Two spellings of the same act
// usually share a key, but unrelated acts can collide too. Never merge on a key match.
func Key(name string) string {
	key := strings.ToLower(name)
	for _, s := range keyStrip {
		key = strings.ReplaceAll(key, s, "")
	}
	return key
}

// DuplicateSet is a group of distinct names that share a key.
type DuplicateSet struct {
	Key   string   `json:"key"`
	Names []string `json:"names"`
}

// FindDuplicates groups the distinct names by Key and returns the keys that more than
// one name maps to. Sets are ordered by key and names within a set ascending.
func FindDuplicates(names []string) []DuplicateSet {
	byKey := make(map[string]map[string]struct{})
	for _, name := range names {
		k := Key(name)
		if byKey[k] == nil {
			byKey[k] = make(map[string]struct{})
		}
		byKey[k][name] = struct{}{}
	}

	sets := []DuplicateSet{}
	for k, members := range byKey {
		if len(members) < 2 {
			continue
		}
		set := DuplicateSet{Key: k, Names: make([]string, 0, len(members))}
		for name := range members {
			set.Names = append(set.Names, name)
		}
		sort.Strings(set.Names)
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Key < sets[j].Key })
	return sets
}
