package repository

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/models"
	"gorm.io/gorm"
)

// ShowRepository handles database operations for Show entities and their lineups
type ShowRepository struct {
	DB *gorm.DB
}

// NewShowRepository creates a new instance of ShowRepository
func NewShowRepository(db *gorm.DB) *ShowRepository {
	return &ShowRepository{DB: db}
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func validateShow(rec *ingest.ShowRecord) error {
	rec.Venue = strings.TrimSpace(rec.Venue)
	rec.Location = strings.TrimSpace(rec.Location)
	rec.Event = strings.TrimSpace(rec.Event)
	rec.SourceID = strings.TrimSpace(rec.SourceID)

	if _, err := time.Parse(ingest.StoreDateLayout, rec.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if rec.Venue == "" {
		return &ValidationError{Field: "venue", Reason: "venue is required"}
	}
	var bands []string
	for _, b := range rec.Bands {
		if b = strings.TrimSpace(b); b != "" {
			bands = append(bands, b)
		}
	}
	if len(bands) == 0 {
		return &ValidationError{Field: "bands", Reason: "at least one band is required"}
	}
	rec.Bands = bands
	return nil
}

func getOrCreateVenue(tx *gorm.DB, name, location string) (*models.Venue, error) {
	var venue models.Venue
	err := tx.Where("name = ?", name).First(&venue).Error
	if err == nil {
		if venue.Location == "" && location != "" {
			if err := tx.Model(&venue).Update("location", location).Error; err != nil {
				return nil, fmt.Errorf("failed to set location for venue %s: %w", name, err)
			}
		}
		return &venue, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up venue %s: %w", name, err)
	}
	venue = models.Venue{Name: name, Location: location}
	if err := tx.Create(&venue).Error; err != nil {
		return nil, fmt.Errorf("failed to create venue %s: %w", name, err)
	}
	return &venue, nil
}

func getOrCreateEvent(tx *gorm.DB, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	var event models.Event
	err := tx.Where("name = ?", name).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		event = models.Event{Name: name}
		err = tx.Create(&event).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create event %s: %w", name, err)
	}
	return &event.ID, nil
}

// writeLineup replaces the show's appearances with bands in billing order.
func writeLineup(tx *gorm.DB, showID uint, bands []string) error {
	if err := tx.Where("show_id = ?", showID).Delete(&models.ShowBand{}).Error; err != nil {
		return fmt.Errorf("failed to clear lineup for show %d: %w", showID, err)
	}
	for i, name := range bands {
		band, err := getOrCreateBand(tx, name)
		if err != nil {
			return err
		}
		sb := models.ShowBand{ShowID: showID, BandID: band.ID, BandOrder: i + 1}
		if err := tx.Create(&sb).Error; err != nil {
			return fmt.Errorf("failed to add %s to show %d: %w", name, showID, err)
		}
	}
	return nil
}

func createShow(tx *gorm.DB, rec ingest.ShowRecord) (*models.Show, error) {
	venue, err := getOrCreateVenue(tx, rec.Venue, rec.Location)
	if err != nil {
		return nil, err
	}
	eventID, err := getOrCreateEvent(tx, rec.Event)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	show := models.Show{
		SourceID:  rec.SourceID,
		Date:      rec.Date,
		VenueID:   venue.ID,
		EventID:   eventID,
		Confirmed: rec.Confirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if show.SourceID == "" {
		show.SourceID = uuid.NewString()
	}
	if err := tx.Create(&show).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "source_id", Reason: fmt.Sprintf("show %s already exists", show.SourceID)}
		}
		return nil, fmt.Errorf("failed to create show on %s: %w", rec.Date, err)
	}
	if err := writeLineup(tx, show.ID, rec.Bands); err != nil {
		return nil, err
	}
	return &show, nil
}

// Create stores a show, creating its venue, event and any unseen bands.
func (r *ShowRepository) Create(rec ingest.ShowRecord) (*models.Show, error) {
	if err := validateShow(&rec); err != nil {
		return nil, err
	}
	var show *models.Show
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		show, err = createShow(tx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(show.ID)
}

// Update replaces a show's date, venue, event and lineup. References dropped by the
// edit are cleaned up in the same transaction.
func (r *ShowRepository) Update(id uint, rec ingest.ShowRecord) (*models.Show, error) {
	if err := validateShow(&rec); err != nil {
		return nil, err
	}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var show models.Show
		if err := tx.First(&show, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "show", ID: id}
			}
			return fmt.Errorf("failed to load show %d: %w", id, err)
		}
		venue, err := getOrCreateVenue(tx, rec.Venue, rec.Location)
		if err != nil {
			return err
		}
		eventID, err := getOrCreateEvent(tx, rec.Event)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"date":       rec.Date,
			"venue_id":   venue.ID,
			"event_id":   gorm.Expr("NULL"),
			"confirmed":  rec.Confirmed,
			"updated_at": time.Now().Unix(),
		}
		if eventID != nil {
			updates["event_id"] = *eventID
		}
		if err := tx.Model(&models.Show{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update show %d: %w", id, err)
		}
		if err := writeLineup(tx, id, rec.Bands); err != nil {
			return err
		}
		_, _, _, err = cleanupOrphans(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// GetByID retrieves a show with its venue, event and ordered lineup
func (r *ShowRepository) GetByID(id uint) (*models.Show, error) {
	var show models.Show
	err := r.DB.Preload("Venue").Preload("Event").
		Preload("Bands", func(db *gorm.DB) *gorm.DB { return db.Order("band_order ASC") }).
		Preload("Bands.Band").
		First(&show, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "show", ID: id}
		}
		return nil, fmt.Errorf("failed to get show by ID %d: %w", id, err)
	}
	return &show, nil
}

// Delete removes a show and anything only it referenced.
func (r *ShowRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("show_id = ?", id).Delete(&models.ShowBand{}).Error; err != nil {
			return fmt.Errorf("failed to delete lineup of show %d: %w", id, err)
		}
		result := tx.Delete(&models.Show{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete show ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Entity: "show", ID: id}
		}
		bands, venues, events, err := cleanupOrphans(tx)
		if err != nil {
			return err
		}
		log.Printf("Deleted show %d (orphans removed: %d bands, %d venues, %d events)", id, bands, venues, events)
		return nil
	})
}

// Import stores every record whose source id is not already present, in one transaction.
func (r *ShowRepository) Import(records []ingest.ShowRecord) (ImportResult, error) {
	var res ImportResult
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			rec := records[i]
			if err := validateShow(&rec); err != nil {
				log.Printf("Skipping show %s: %v", rec.SourceID, err)
				res.Skipped++
				continue
			}
			if rec.SourceID != "" {
				var existing int64
				if err := tx.Model(&models.Show{}).Where("source_id = ?", rec.SourceID).Count(&existing).Error; err != nil {
					return fmt.Errorf("failed to check show %s: %w", rec.SourceID, err)
				}
				if existing > 0 {
					res.Skipped++
					continue
				}
			}
			if _, err := createShow(tx, rec); err != nil {
				return fmt.Errorf("failed to import show %s: %w", rec.SourceID, err)
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
