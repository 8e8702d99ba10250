package models

import (
	"time"

	"gorm.io/datatypes"
)

// Client is a customer of the shop. Purchases are embedded sub-resources
// created and updated alongside the client.
type Client struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string         `gorm:"size:120;not null" json:"nome"`
	Phone          *string        `gorm:"size:40" json:"telefone"`
	Email          *string        `gorm:"size:120" json:"email"`
	CPF            *string        `gorm:"size:20" json:"cpf"`
	CPFDigits      string         `gorm:"size:14;index" json:"-"`
	Gender         *string        `gorm:"size:20" json:"genero"`
	BirthDate      *string        `gorm:"size:10" json:"dataNascimento"`
	AcceptsContact bool           `gorm:"default:true" json:"aceitaContato"`
	ClientType     *string        `gorm:"size:40" json:"tipoCliente"`
	Tag            *string        `gorm:"size:40" json:"etiqueta"`
	Interests      datatypes.JSON `json:"interesses"`
	Purchases      []Purchase     `gorm:"constraint:OnDelete:CASCADE" json:"compras"`
	OwnerID        string         `gorm:"size:60;index" json:"userId"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
