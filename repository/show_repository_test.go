package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/models"
)

func TestCreateShowBuildsLineup(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepository(db)

	show, err := repo.Create(ingest.ShowRecord{
		Date:      "2019-03-14",
		Venue:     " Paradise Rock Club ",
		Location:  "Boston, MA",
		Event:     "Fest",
		Bands:     []string{"Frank Turner", " ", "The Menzingers"},
		Confirmed: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, show.SourceID)
	assert.Equal(t, "Paradise Rock Club", show.Venue.Name)
	assert.Equal(t, "Boston, MA", show.Venue.Location)
	require.NotNil(t, show.Event)
	assert.Equal(t, "Fest", show.Event.Name)
	require.Len(t, show.Bands, 2)
	assert.Equal(t, "Frank Turner", show.Bands[0].Band.Name)
	assert.Equal(t, 1, show.Bands[0].BandOrder)
	assert.Equal(t, "The Menzingers", show.Bands[1].Band.Name)
	assert.Equal(t, 2, show.Bands[1].BandOrder)
}

func TestCreateShowValidation(t *testing.T) {
	repo := NewShowRepository(newTestDB(t))

	tests := []struct {
		name  string
		rec   ingest.ShowRecord
		field string
	}{
		{"bad date", ingest.ShowRecord{Date: "03/14/2019", Venue: "V", Bands: []string{"X"}}, "date"},
		{"no venue", ingest.ShowRecord{Date: "2019-03-14", Venue: "  ", Bands: []string{"X"}}, "venue"},
		{"no bands", ingest.ShowRecord{Date: "2019-03-14", Venue: "V", Bands: []string{""}}, "bands"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(tt.rec)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.field, err.(*ValidationError).Field)
		})
	}
}

func TestDeleteShowCleansUpOrphans(t *testing.T) {
	db := newTestDB(t)
	seedShows(t, db, []string{"A", "B"}, []string{"A"})
	repo := NewShowRepository(db)

	var first models.Show
	require.NoError(t, db.Where("source_id = ?", "seed-0").First(&first).Error)
	require.NoError(t, repo.Delete(first.ID))

	_, err := NewBandRepository(db).GetByName("B")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = NewBandRepository(db).GetByName("A")
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(first.ID), ErrNotFound)
}

func TestOrphanCleanupKeepsPrimaryWithAliases(t *testing.T) {
	db := newTestDB(t)
	seedShows(t, db, []string{"A"}, []string{"A & Friends"})
	groups := NewAliasGroupRepository(db)
	a, friends := bandID(t, db, "A"), bandID(t, db, "A & Friends")
	require.NoError(t, groups.CreateGroup(a, []uint{friends}))

	var first models.Show
	require.NoError(t, db.Where("source_id = ?", "seed-0").First(&first).Error)
	require.NoError(t, NewShowRepository(db).Delete(first.ID))

	primary := reloadBand(t, db, a)
	assert.Equal(t, "A", primary.Name)
	count, err := groups.EffectiveShowCount(a)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdateShowReplacesLineup(t *testing.T) {
	db := newTestDB(t)
	seedShows(t, db, []string{"A", "B"})
	repo := NewShowRepository(db)

	var show models.Show
	require.NoError(t, db.Where("source_id = ?", "seed-0").First(&show).Error)

	updated, err := repo.Update(show.ID, ingest.ShowRecord{
		Date:  "2020-02-02",
		Venue: "Middle East",
		Bands: []string{"C", "A"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2020-02-02", updated.Date)
	assert.Equal(t, "Middle East", updated.Venue.Name)
	assert.Nil(t, updated.Event)
	require.Len(t, updated.Bands, 2)
	assert.Equal(t, "C", updated.Bands[0].Band.Name)
	assert.Equal(t, "A", updated.Bands[1].Band.Name)

	_, err = NewBandRepository(db).GetByName("B")
	assert.ErrorIs(t, err, ErrNotFound, "B lost its only appearance")
	var venues int64
	require.NoError(t, db.Model(&models.Venue{}).Count(&venues).Error)
	assert.Equal(t, int64(1), venues)

	_, err = repo.Update(999, ingest.ShowRecord{Date: "2020-02-02", Venue: "V", Bands: []string{"X"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportSkipsKnownSourceIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepository(db)
	records := []ingest.ShowRecord{
		{SourceID: "r1", Date: "2019-03-14", Venue: "V", Bands: []string{"A", "B"}, Confirmed: true},
		{SourceID: "r2", Date: "2019-03-15", Venue: "V", Bands: []string{"A"}, Confirmed: true},
		{SourceID: "r3", Date: "bad", Venue: "V", Bands: []string{"A"}},
	}

	res, err := repo.Import(records)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2, Skipped: 1}, res)

	res, err = repo.Import(records)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 0, Skipped: 3}, res)

	var appearances int64
	require.NoError(t, db.Model(&models.ShowBand{}).Count(&appearances).Error)
	assert.Equal(t, int64(3), appearances)
}

func TestImportStoresCleanBandNames(t *testing.T) {
	db := newTestDB(t)
	rows, err := ingest.ReadRows(strings.NewReader(`[
  {"Row ID": "r3", "Date": "06/01/2021", "Venue": "Brighton Music Hall", "Bands": " Chuck Ragan & The Camradarie ,  "}
]`))
	require.NoError(t, err)
	rec, err := rows[0].ToShowRecord()
	require.NoError(t, err)

	res, err := NewShowRepository(db).Import([]ingest.ShowRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	bands := allBands(t, db)
	require.Len(t, bands, 1)
	assert.Equal(t, "Chuck Ragan & The Camradarie", bands[0].Name)
}
