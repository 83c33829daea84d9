package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the workflow state of an order
type OrderStatus string

const (
	StatusNew      OrderStatus = "ny"
	StatusPlanned  OrderStatus = "planerad"
	StatusOngoing  OrderStatus = "pågår"
	StatusDone     OrderStatus = "klar"
	StatusInvoiced OrderStatus = "fakturerad"
	DefaultStatus              = StatusNew
)

// OrderStatuses lists every status in workflow order
var OrderStatuses = []OrderStatus{StatusNew, StatusPlanned, StatusOngoing, StatusDone, StatusInvoiced}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order represents a work order made up of material line items
type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID    string      `gorm:"not null;index" json:"customer_id"`
	Customer      *Customer   `gorm:"foreignKey:CustomerID" json:"-"`
	CustomerName  string      `gorm:"-" json:"customer_name,omitempty"` // filled from Customer when loaded
	InstallerID   *string     `gorm:"index" json:"installer_id,omitempty"`
	Installer     *Installer  `gorm:"foreignKey:InstallerID" json:"-"`
	InstallerName string      `gorm:"-" json:"installer_name,omitempty"` // filled from Installer when loaded
	Status        OrderStatus `gorm:"not null;default:'ny'" json:"status"`
	Notes         *string     `json:"notes,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total         float64     `gorm:"not null;default:0" json:"total"` // authoritative, computed when the order is created
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the opaque id
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = DefaultStatus
	}
	return nil
}

// AfterFind copies the names of preloaded relations into the display fields
func (o *Order) AfterFind(tx *gorm.DB) error {
	if o.Customer != nil {
		o.CustomerName = o.Customer.Name
	}
	if o.Installer != nil {
		o.InstallerName = o.Installer.Name
	}
	return nil
}

// ShortID returns the last six characters of the id, as shown in order lists
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// OrderItem is one material row of a stored order with its resolved unit price
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	OrderID    string    `gorm:"not null;index;type:varchar(36)" json:"-"`
	MaterialID string    `gorm:"not null;index" json:"material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID" json:"-"`
	Quantity   float64   `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	LineTotal  float64   `gorm:"not null" json:"line_total"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
