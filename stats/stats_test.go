package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByCountBreaksTiesByName(t *testing.T) {
	counts := []NameCount{
		{Name: "b", Count: 2},
		{Name: "The Menzingers", Count: 5},
		{Name: "Alkaline Trio", Count: 2},
		{Name: "a", Count: 2},
	}
	SortByCount(counts)

	assert.Equal(t, []NameCount{
		{Name: "The Menzingers", Count: 5},
		{Name: "Alkaline Trio", Count: 2},
		{Name: "a", Count: 2},
		{Name: "b", Count: 2},
	}, counts)
}

func TestFromMapAndLimit(t *testing.T) {
	counts := FromMap(map[string]int{"x": 1, "y": 3, "z": 3})
	assert.Equal(t, []NameCount{{"y", 3}, {"z", 3}, {"x", 1}}, counts)
	assert.Len(t, Limit(counts, 2), 2)
	assert.Len(t, Limit(counts, 0), 3)
	assert.Len(t, Limit(counts, 10), 3)
}

func TestInitial(t *testing.T) {
	tests := []struct {
		in     string
		letter string
		ok     bool
	}{
		{"The Menzingers", "M", true},
		{"alkaline trio", "A", true},
		{"7 Seconds", "", false},
		{"", "", false},
		{"!!!", "", false},
	}
	for _, tt := range tests {
		letter, ok := Initial(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.letter, letter, tt.in)
	}
}

func TestMostByLetterKeepsTies(t *testing.T) {
	leaders := MostByLetter([]NameCount{
		{Name: "The Menzingers", Count: 4},
		{Name: "Mustard Plug", Count: 4},
		{Name: "Mischief Brew", Count: 1},
		{Name: "Alkaline Trio", Count: 2},
		{Name: "7 Seconds", Count: 9},
	})

	assert.Equal(t, []LetterLeaders{
		{Letter: "A", Leaders: []NameCount{{"Alkaline Trio", 2}}},
		{Letter: "M", Leaders: []NameCount{{"Mustard Plug", 4}, {"The Menzingers", 4}}},
	}, leaders)
}
