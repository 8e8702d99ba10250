package models

import (
	"time"

	"gorm.io/datatypes"
)

// Purchase always belongs to exactly one client. The client's purchase list
// is kept sorted ascending by date on every mutation.
type Purchase struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID     uint           `gorm:"index" json:"clienteId"`
	Date         string         `gorm:"size:10;index" json:"data"`
	Frame        *string        `gorm:"size:160" json:"armacao"`
	Lens         *string        `gorm:"size:160" json:"lente"`
	FrameValue   *float64       `json:"valorArmacao"`
	LensValue    *float64       `json:"valorLente"`
	Total        *float64       `json:"valorTotal"`
	Invoice      *string        `gorm:"size:60" json:"ordemServico"`
	Prescription datatypes.JSON `json:"receita"`
	Contacts     []Contact      `gorm:"constraint:OnDelete:CASCADE" json:"contatos"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Prescription is the optical prescription attached to a purchase. Every
// measurement is a nullable string; the frontend sends them verbatim.
type Prescription struct {
	Right EyeSide `json:"od"`
	Left  EyeSide `json:"oe"`
}

type EyeSide struct {
	Spherical   *string `json:"esferico"`
	Cylindrical *string `json:"cilindrico"`
	Axis        *string `json:"eixo"`
	NearPD      *string `json:"dnp"`
	Addition    *string `json:"adicao"`
}
