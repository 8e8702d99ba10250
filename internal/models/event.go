package models

import "time"

// Event is a calendar entry. It may reference a client but is independent of
// purchases. Contact-derived calendar entries are synthesized at read time
// and never persisted as events.
type Event struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        string    `gorm:"size:10;index" json:"data"`
	Title       string    `gorm:"size:160;not null" json:"titulo"`
	Description *string   `json:"descricao"`
	Color       *string   `gorm:"size:20" json:"cor"`
	ClientID    *uint     `gorm:"index" json:"clienteId"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	OwnerID     string    `gorm:"size:60;index" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
