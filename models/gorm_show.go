package models

// Show represents a single attended gig.
// It corresponds to the 'shows' table.
type Show struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID  string `gorm:"not null;uniqueIndex" json:"source_id"` // Row ID from the ingestion export, or a generated UUID
	Date      string `gorm:"not null;index" json:"date"`            // YYYY-MM-DD
	VenueID   uint   `gorm:"not null;index" json:"venue_id"`
	EventID   *uint  `gorm:"index" json:"event_id,omitempty"`
	Confirmed bool   `gorm:"not null" json:"confirmed"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	UpdatedAt int64  `gorm:"not null" json:"updated_at"`

	Venue *Venue     `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Event *Event     `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Bands []ShowBand `gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE" json:"bands,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Show) TableName() string {
	return "shows"
}
