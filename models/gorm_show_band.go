package models

// ShowBand is one appearance: a band billed at a show in a given slot.
// It corresponds to the 'show_bands' table.
type ShowBand struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ShowID    uint `gorm:"not null;index" json:"show_id"`
	BandID    uint `gorm:"not null;index" json:"band_id"`
	BandOrder int  `gorm:"not null" json:"band_order"`

	Band *Band `gorm:"foreignKey:BandID;constraint:OnDelete:CASCADE" json:"band,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (ShowBand) TableName() string {
	return "show_bands"
}
