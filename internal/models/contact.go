package models

import "time"

// Contact is a scheduled post-sale follow-up tied to a purchase. Its
// pending/overdue/completed status is derived at read time, never stored.
type Contact struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseID   uint       `gorm:"index" json:"compraId"`
	ClientID     uint       `gorm:"index" json:"clienteId"`
	ContactDate  string     `gorm:"size:10;index" json:"dataContato"`
	PurchaseDate string     `gorm:"size:10" json:"dataCompra"`
	MonthOffset  int        `json:"meses"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
