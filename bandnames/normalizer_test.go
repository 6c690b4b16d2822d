package bandnames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesVariants(t *testing.T) {
	n := NewNormalizer([]EquivalenceGroup{{"Frank Turner", "Frank Turner & the Sleeping Souls"}})

	assert.Equal(t, "Frank Turner", n.Normalize("Frank Turner & the Sleeping Souls"))
	assert.Equal(t, "Frank Turner", n.Normalize("Frank Turner"))
	assert.Equal(t, "The Menzingers", n.Normalize("The Menzingers"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultEquivalents)
	for _, group := range DefaultEquivalents {
		for _, name := range group {
			once := n.Normalize(name)
			assert.Equal(t, once, n.Normalize(once), "variant %q", name)
		}
	}
}

func TestNormalizeIsCaseSensitive(t *testing.T) {
	n := NewNormalizer(DefaultEquivalents)
	assert.Equal(t, "frank turner & the sleeping souls", n.Normalize("frank turner & the sleeping souls"))
}

func TestLookupReportsMissing(t *testing.T) {
	n := NewNormalizer(DefaultEquivalents)

	canon, ok := n.Lookup("Lenny Lashley & Friends")
	require.True(t, ok)
	assert.Equal(t, "Lenny Lashley", canon)

	_, ok = n.Lookup("Hot Water Music")
	assert.False(t, ok)
}

func TestOverlappingGroupsKeepFirstDeclaration(t *testing.T) {
	n := NewNormalizer([]EquivalenceGroup{
		{"Chuck Ragan", "Chuck Ragan & Friends"},
		{},
		{"Hot Water Music", "Chuck Ragan & Friends", ""},
	})

	assert.Equal(t, "Chuck Ragan", n.Normalize("Chuck Ragan & Friends"))
	assert.Equal(t, "Hot Water Music", n.Normalize("Hot Water Music"))
	require.Len(t, n.Conflicts(), 1)
	assert.Equal(t, Conflict{Name: "Chuck Ragan & Friends", Kept: "Chuck Ragan", Ignored: "Hot Water Music", GroupIdx: 2}, n.Conflicts()[0])
	assert.Equal(t, 3, n.Len())
}

func TestParseEquivalents(t *testing.T) {
	groups, err := ParseEquivalents([]byte(`
groups:
  - ["Frank Turner", "Frank Turner & the Sleeping Souls"]
  - - Chuck Ragan
    - Chuck Ragan & The Camradarie
`))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Frank Turner", groups[0].Canonical())
	assert.Equal(t, EquivalenceGroup{"Chuck Ragan", "Chuck Ragan & The Camradarie"}, groups[1])

	_, err = ParseEquivalents([]byte("groups: {"))
	assert.Error(t, err)
}

func TestLoadEquivalentsDefaultsWithoutPath(t *testing.T) {
	groups, err := LoadEquivalents("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEquivalents, groups)

	_, err = LoadEquivalents("/nonexistent/equivalents.yaml")
	assert.Error(t, err)
}
