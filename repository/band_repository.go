package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/showlog/showlogbackend/models"
	"gorm.io/gorm"
)

// BandRepository handles database operations for Band entities
type BandRepository struct {
	DB *gorm.DB
}

// NewBandRepository creates a new instance of BandRepository
func NewBandRepository(db *gorm.DB) *BandRepository {
	return &BandRepository{DB: db}
}

// GetByID retrieves a band by its ID, preloading its aliases
func (r *BandRepository) GetByID(id uint) (*models.Band, error) {
	var band models.Band
	err := r.DB.Preload("Aliases", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).First(&band, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "band", ID: id}
		}
		return nil, fmt.Errorf("failed to get band by ID %d: %w", id, err)
	}
	return &band, nil
}

// GetByName retrieves a band by its exact stored name
func (r *BandRepository) GetByName(name string) (*models.Band, error) {
	var band models.Band
	err := r.DB.Where("name = ?", name).First(&band).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "band", Name: name}
		}
		return nil, fmt.Errorf("failed to get band by name %s: %w", name, err)
	}
	return &band, nil
}

// getOrCreateBand finds a band by exact name or inserts it as a standalone band.
func getOrCreateBand(tx *gorm.DB, name string) (*models.Band, error) {
	var band models.Band
	err := tx.Where("name = ?", name).First(&band).Error
	if err == nil {
		return &band, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up band %s: %w", name, err)
	}
	now := time.Now().Unix()
	band = models.Band{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(&band).Error; err != nil {
		return nil, fmt.Errorf("failed to create band %s: %w", name, err)
	}
	return &band, nil
}

// GetOrCreate returns the band with this exact name, creating it on first sight.
func (r *BandRepository) GetOrCreate(name string) (*models.Band, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "band name is required"}
	}
	return getOrCreateBand(r.DB, name)
}

// ListAll retrieves all bands, aliases included, ordered by name
func (r *BandRepository) ListAll() ([]models.Band, error) {
	var bands []models.Band
	err := r.DB.Order("name ASC").Find(&bands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bands: %w", err)
	}
	return bands, nil
}

// Rename changes a band's display name. The new name must not belong to another band.
func (r *BandRepository) Rename(id uint, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &ValidationError{Field: "name", Reason: "band name is required"}
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		band, err := loadBand(tx, id)
		if err != nil {
			return err
		}
		if band.Name == newName {
			return nil
		}

		var clash int64
		if err := tx.Model(&models.Band{}).Where("name = ? AND id <> ?", newName, id).Count(&clash).Error; err != nil {
			return fmt.Errorf("failed to check band name %s: %w", newName, err)
		}
		if clash > 0 {
			return &DuplicateNameError{Name: newName}
		}

		result := tx.Model(&models.Band{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":       newName,
			"updated_at": time.Now().Unix(),
		})
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return &DuplicateNameError{Name: newName}
			}
			return fmt.Errorf("failed to rename band ID %d: %w", id, result.Error)
		}
		return nil
	})
}

// cleanupOrphans deletes bands, venues and events nothing refers to any more. A band
// with no appearances survives while other bands are still aliased to it.
func cleanupOrphans(tx *gorm.DB) (bands, venues, events int64, err error) {
	res := tx.
		Where("id NOT IN (?)", tx.Model(&models.ShowBand{}).Select("band_id")).
		Where("id NOT IN (?)", tx.Model(&models.Band{}).Select("primary_band_id").Where("primary_band_id IS NOT NULL")).
		Delete(&models.Band{})
	if res.Error != nil {
		return 0, 0, 0, fmt.Errorf("failed to delete orphaned bands: %w", res.Error)
	}
	bands = res.RowsAffected

	res = tx.Where("id NOT IN (?)", tx.Model(&models.Show{}).Select("venue_id")).Delete(&models.Venue{})
	if res.Error != nil {
		return 0, 0, 0, fmt.Errorf("failed to delete orphaned venues: %w", res.Error)
	}
	venues = res.RowsAffected

	res = tx.Where("id NOT IN (?)", tx.Model(&models.Show{}).Select("event_id").Where("event_id IS NOT NULL")).Delete(&models.Event{})
	if res.Error != nil {
		return 0, 0, 0, fmt.Errorf("failed to delete orphaned events: %w", res.Error)
	}
	events = res.RowsAffected
	return bands, venues, events, nil
}

// CleanupOrphans removes unreferenced bands, venues and events in one transaction.
func (r *BandRepository) CleanupOrphans() (int64, error) {
	var removed int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		b, v, e, err := cleanupOrphans(tx)
		removed = b + v + e
		return err
	})
	return removed, err
}

func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"))
}
