package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultUnit is the unit used when a material is created without one ("styck")
const DefaultUnit = "st"

// Material represents an inventory item that can be put on an order
type Material struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SKU       string    `gorm:"uniqueIndex;not null" json:"sku"`
	Name      string    `gorm:"not null" json:"name"`
	Price     float64   `gorm:"not null;default:0;check:price >= 0" json:"price"`
	Unit      string    `gorm:"not null;default:'st'" json:"unit"`
	Stock     float64   `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// BeforeCreate assigns the opaque id and the default unit
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Unit == "" {
		m.Unit = DefaultUnit
	}
	return nil
}

// FindMaterial returns the material with the given id, or false when it is not in the list
func FindMaterial(materials []Material, id string) (Material, bool) {
	for _, m := range materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}
