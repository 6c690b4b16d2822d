package models

// Band represents a billed act in the database using GORM.
// It corresponds to the 'bands' table.
//
// PrimaryBandID is nil for standalone bands and for group primaries. When set, it
// points at a band whose own PrimaryBandID is nil; the repository layer keeps the
// alias relation at depth one.
type Band struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"not null;uniqueIndex" json:"name"`
	PrimaryBandID *uint  `gorm:"index" json:"primary_band_id,omitempty"` // Nullable self-reference to bands table
	CreatedAt     int64  `gorm:"not null" json:"created_at"`             // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt     int64  `gorm:"not null" json:"updated_at"`             // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	// omitempty will hide this if it is not preloaded or is empty
	Aliases []Band `gorm:"foreignKey:PrimaryBandID;constraint:OnDelete:SET NULL" json:"aliases,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Band) TableName() string {
	return "bands"
}

// IsAlias reports whether the band currently folds into another band's statistics.
func (b *Band) IsAlias() bool {
	return b.PrimaryBandID != nil
}
