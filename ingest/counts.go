package ingest

import (
	"strings"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/stats"
)

// CountBands tallies appearances per band straight from raw rows, collapsing known
// variants with n. A nil normalizer counts names as billed.
func CountBands(rows []Row, n *bandnames.Normalizer) []stats.NameCount {
	tally := make(map[string]int)
	for _, r := range rows {
		for _, band := range SplitBands(r.Bands) {
			if n != nil {
				band = n.Normalize(band)
			}
			tally[band]++
		}
	}
	return stats.FromMap(tally)
}

// CountVenues tallies shows per venue.
func CountVenues(rows []Row) []stats.NameCount {
	tally := make(map[string]int)
	for _, r := range rows {
		if v := strings.TrimSpace(r.Venue); v != "" {
			tally[v]++
		}
	}
	return stats.FromMap(tally)
}

// BandNames returns every billed name in the rows, in order of appearance.
func BandNames(rows []Row) []string {
	var names []string
	for _, r := range rows {
		names = append(names, SplitBands(r.Bands)...)
	}
	return names
}
