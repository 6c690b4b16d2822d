package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/stats"
)

const sampleExport = `[
  {"Row ID": "r1", "Date": "03/14/2019", "Venue": "Brighton Music Hall", "Bands": "Frank Turner & the Sleeping Souls, The Menzingers"},
  {"Row ID": "r2", "Date": "11/02/2019", "Venue": "Paradise Rock Club", "Event": "Fest", "Bands": "Frank Turner, Menzingers", "Confirmed": "N"},
  {"Row ID": "r3", "Date": "06/01/2021", "Venue": " Brighton Music Hall ", "Bands": " Chuck Ragan & The Camradarie ,  "},
  {"Row ID": "r4", "Date": "bad", "Venue": "Middle East", "Bands": "Hot Water Music"}
]`

func loadSample(t *testing.T) []Row {
	t.Helper()
	rows, err := ReadRows(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	return rows
}

func TestSplitBands(t *testing.T) {
	assert.Equal(t, []string{"A", "B & C", "D"}, SplitBands(" A, B & C, D "))
	assert.Empty(t, SplitBands(""))
	assert.Equal(t, []string{"Chuck Ragan & The Camradarie"}, SplitBands(" Chuck Ragan & The Camradarie ,  "))
	assert.Equal(t, []string{"A", "B"}, SplitBands("A ,B,"))
	assert.Empty(t, SplitBands(" , ,"))
}

func TestToShowRecord(t *testing.T) {
	rows := loadSample(t)

	rec, err := rows[1].ToShowRecord()
	require.NoError(t, err)
	assert.Equal(t, ShowRecord{
		SourceID:  "r2",
		Date:      "2019-11-02",
		Venue:     "Paradise Rock Club",
		Event:     "Fest",
		Bands:     []string{"Frank Turner", "Menzingers"},
		Confirmed: false,
	}, rec)

	rec, err = rows[2].ToShowRecord()
	require.NoError(t, err)
	assert.Equal(t, []string{"Chuck Ragan & The Camradarie"}, rec.Bands)
	assert.Equal(t, "Brighton Music Hall", rec.Venue)

	_, err = rows[3].ToShowRecord()
	assert.Error(t, err)
}

func TestToShowRecordGeneratesSourceID(t *testing.T) {
	rec, err := Row{Date: "01/05/2020", Venue: "V", Bands: "X"}.ToShowRecord()
	require.NoError(t, err)
	assert.Len(t, rec.SourceID, 36)
	assert.True(t, rec.Confirmed)
}

func TestFilterByYear(t *testing.T) {
	rows := loadSample(t)
	assert.Len(t, FilterByYear(rows, -1), 4)
	assert.Len(t, FilterByYear(rows, 2019), 2)
	assert.Len(t, FilterByYear(rows, 2021), 1)
	assert.Empty(t, FilterByYear(rows, 1999))
}

func TestCountBandsCollapsesEquivalents(t *testing.T) {
	rows := FilterByYear(loadSample(t), 2019)

	counts := CountBands(rows, bandnames.NewNormalizer(bandnames.DefaultEquivalents))
	assert.Equal(t, []stats.NameCount{
		{Name: "Frank Turner", Count: 2},
		{Name: "Menzingers", Count: 1},
		{Name: "The Menzingers", Count: 1},
	}, counts)

	raw := CountBands(rows, nil)
	assert.Len(t, raw, 4)
}

func TestCountVenues(t *testing.T) {
	counts := CountVenues(loadSample(t))
	assert.Equal(t, stats.NameCount{Name: "Brighton Music Hall", Count: 2}, counts[0])
	assert.Len(t, counts, 3)
}

func TestBandNamesFeedDuplicateDetection(t *testing.T) {
	sets := bandnames.FindDuplicates(BandNames(loadSample(t)))
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"Menzingers", "The Menzingers"}, sets[0].Names)
}
