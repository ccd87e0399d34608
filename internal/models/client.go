package models

import (
	"time"
)

// Client is a freight-forwarding customer.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nom       string    `gorm:"not null;index" json:"nom"`
	NIF       *string   `gorm:"index" json:"nif"`
	Telephone *string   `json:"telephone"`
	Email     *string   `json:"email"`
	Adresse   *string   `json:"adresse"`
	Actif     bool      `gorm:"default:true" json:"actif"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Transitaire is a forwarding agent that can be attached to a document.
type Transitaire struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nom       string    `gorm:"not null" json:"nom"`
	Telephone *string   `json:"telephone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transitaire) TableName() string {
	return "transitaires"
}

// Armateur is a shipping line referenced by containers.
type Armateur struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nom       string    `gorm:"not null" json:"nom"`
	Code      *string   `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (Armateur) TableName() string {
	return "armateurs"
}

// Banque is a bank account referenced by payments, movements and credits.
type Banque struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Nom         string    `gorm:"not null" json:"nom"`
	NumeroCompte *string  `json:"numero_compte"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Banque) TableName() string {
	return "banques"
}
