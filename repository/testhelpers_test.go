package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.MemoryPath, "silent", 1000)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedShows creates one show per lineup, dated one day apart in 2019.
func seedShows(t *testing.T, db *gorm.DB, lineups ...[]string) {
	t.Helper()
	shows := NewShowRepository(db)
	for i, lineup := range lineups {
		_, err := shows.Create(ingest.ShowRecord{
			SourceID:  fmt.Sprintf("seed-%d", i),
			Date:      fmt.Sprintf("2019-01-%02d", i+1),
			Venue:     "Brighton Music Hall",
			Bands:     lineup,
			Confirmed: true,
		})
		require.NoError(t, err)
	}
}

func bandID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	band, err := NewBandRepository(db).GetByName(name)
	require.NoError(t, err, name)
	return band.ID
}

func reloadBand(t *testing.T, db *gorm.DB, id uint) models.Band {
	t.Helper()
	var band models.Band
	require.NoError(t, db.First(&band, id).Error)
	return band
}

func allBands(t *testing.T, db *gorm.DB) []models.Band {
	t.Helper()
	var bands []models.Band
	require.NoError(t, db.Order("id").Find(&bands).Error)
	return bands
}
