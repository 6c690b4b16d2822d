package models

// Venue is where a show took place.
type Venue struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null;uniqueIndex" json:"name"`
	Location string `json:"location"`
	Closed   bool   `gorm:"not null;default:false" json:"closed"`
}

// TableName explicitly sets the table name for GORM.
func (Venue) TableName() string {
	return "venues"
}

// Event is a festival or tour a show belonged to.
type Event struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}

// TableName explicitly sets the table name for GORM.
func (Event) TableName() string {
	return "events"
}
