// Package bandnames collapses differently billed band names into one canonical form.
//
// Two mechanisms live here. Normalizer applies a hand-maintained table of known
// variants and is safe to use for counting. Key produces a lossy comparison key that is
// only ever used to suggest duplicates for a person to review.
package bandnames

// EquivalenceGroup is an ordered list of spellings of one act. The first entry is canonical.
type EquivalenceGroup []string

// Canonical returns the group's canonical name, or "" for an empty group.
func (g EquivalenceGroup) Canonical() string {
	if len(g) == 0 {
		return ""
	}
	return g[0]
}

// DefaultEquivalents are the variants known at the time the attendance data was migrated.
var DefaultEquivalents = []EquivalenceGroup{
	{"Lenny Lashley", "Lenny Lashley's Gang of One", "Lenny Lashley & Friends"},
	{"Frank Turner", "Frank Turner & the Sleeping Souls"},
	{"Chuck Ragan", "Chuck Ragan & The Camradarie"},
}

// Conflict records a variant listed in more than one group. The earlier group wins.
type Conflict struct {
	Name     string
	Kept     string // canonical of the group that owns the mapping
	Ignored  string // canonical of the later group that also listed the name
	GroupIdx int    // index of the ignored group
}

// Normalizer maps every configured variant to its canonical name.
// It is built once and never mutated, so a single value can be shared by all callers.
type Normalizer struct {
	canonical map[string]string
	conflicts []Conflict
}

// NewNormalizer derives the variant lookup from groups. Empty groups and blank names are
// skipped. A name in two groups maps to the first group that declared it.
func NewNormalizer(groups []EquivalenceGroup) *Normalizer {
	n := &Normalizer{canonical: make(map[string]string)}
	for idx, group := range groups {
		canon := group.Canonical()
		if canon == "" {
			continue
		}
		for _, variant := range group {
			if variant == "" {
				continue
			}
			if existing, ok := n.canonical[variant]; ok {
				if existing != canon {
					n.conflicts = append(n.conflicts, Conflict{Name: variant, Kept: existing, Ignored: canon, GroupIdx: idx})
				}
				continue
			}
			n.canonical[variant] = canon
		}
	}
	return n
}

// Lookup returns the canonical name for a configured variant. ok is false when the name
// is not in any group.
func (n *Normalizer) Lookup(name string) (canonical string, ok bool) {
	canonical, ok = n.canonical[name]
	return canonical, ok
}

// Normalize returns the canonical form of name, or name itself when it is not a known variant.
// Matching is exact and case-sensitive.
func (n *Normalizer) Normalize(name string) string {
	if canonical, ok := n.Lookup(name); ok {
		return canonical
	}
	return name
}

// Conflicts lists variants that appeared in more than one group.
func (n *Normalizer) Conflicts() []Conflict {
	out := make([]Conflict, len(n.conflicts))
	copy(out, n.conflicts)
	return out
}

// Len is the number of distinct variant strings known to the normalizer.
func (n *Normalizer) Len() int {
	return len(n.canonical)
}
