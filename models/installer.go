package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Installer represents a field worker that can be assigned to orders
type Installer struct {
	ID     string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name   string   `gorm:"not null" json:"name"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Skills []string `gorm:"serializer:json" json:"skills"`
	// Active has no column default because gorm would skip an explicit false on insert
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Installer model
func (Installer) TableName() string {
	return "installers"
}

// BeforeCreate assigns the opaque id
func (i *Installer) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Skills == nil {
		i.Skills = []string{}
	}
	return nil
}
