// Package draft holds the client side order draft and the rules for editing it.
//
// A Draft is a plain value. Every edit returns a new Draft and leaves the receiver
// untouched, so a caller can keep the previous state around (for example to restore it
// when a submission fails).
package draft

import (
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// Field names one editable column of a line item
type Field string

const (
	FieldMaterial  Field = "material_id"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unit_price"
)

// LineItem is one row of a draft as typed by the user.
// Quantity and UnitPrice are kept as entered and only coerced when priced or submitted.
type LineItem struct {
	MaterialID string `json:"material_id" yaml:"material_id"`
	Quantity   string `json:"quantity" yaml:"quantity"`
	UnitPrice  string `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
}

// Draft is an order being composed that has not been sent to the backend
type Draft struct {
	CustomerID  string             `json:"customer_id" yaml:"customer_id"`
	InstallerID string             `json:"installer_id,omitempty" yaml:"installer_id,omitempty"`
	Status      models.OrderStatus `json:"status" yaml:"status"`
	Notes       string             `json:"notes,omitempty" yaml:"notes,omitempty"`
	Items       []LineItem         `json:"items" yaml:"items"`
}

// NewLineItem returns the row added by "add row": no material, quantity 1, no price override
func NewLineItem() LineItem {
	return LineItem{Quantity: "1"}
}

// New returns a fresh draft: no customer or installer, status "ny", one empty row
func New() Draft {
	return Draft{
		Status: models.DefaultStatus,
		Items:  []LineItem{NewLineItem()},
	}
}

func (d Draft) SetCustomer(id string) Draft {
	d.CustomerID = id
	return d
}

// SetInstaller assigns an installer; an empty id clears the assignment
func (d Draft) SetInstaller(id string) Draft {
	d.InstallerID = id
	return d
}

// SetStatus changes the status. Unknown statuses leave the draft unchanged.
func (d Draft) SetStatus(status models.OrderStatus) Draft {
	if !status.Valid() {
		return d
	}
	d.Status = status
	return d
}

func (d Draft) SetNotes(notes string) Draft {
	d.Notes = notes
	return d
}

// AddLineItem appends one empty row
func (d Draft) AddLineItem() Draft {
	items := make([]LineItem, len(d.Items), len(d.Items)+1)
	copy(items, d.Items)
	d.Items = append(items, NewLineItem())
	return d
}

// RemoveLineItem deletes the row at index. Out of range indexes are ignored.
// Removing the last row leaves the draft with no rows.
func (d Draft) RemoveLineItem(index int) Draft {
	if index < 0 || index >= len(d.Items) {
		return d
	}
	items := make([]LineItem, 0, len(d.Items)-1)
	items = append(items, d.Items[:index]...)
	items = append(items, d.Items[index+1:]...)
	d.Items = items
	return d
}

// UpdateLineItem replaces one field of the row at index and leaves every other row as is.
// Out of range indexes and unknown fields are ignored.
func (d Draft) UpdateLineItem(index int, field Field, value string) Draft {
	if index < 0 || index >= len(d.Items) {
		return d
	}

	item := d.Items[index]
	switch field {
	case FieldMaterial:
		item.MaterialID = value
	case FieldQuantity:
		item.Quantity = value
	case FieldUnitPrice:
		item.UnitPrice = value
	default:
		return d
	}

	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	items[index] = item
	d.Items = items
	return d
}
