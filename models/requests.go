package models

// CreateCustomerRequest is the body of POST /customers
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required" validate:"required"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty" binding:"omitempty,email" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
}

// CreateInstallerRequest is the body of POST /installers
type CreateInstallerRequest struct {
	Name   string   `json:"name" binding:"required" validate:"required"`
	Email  string   `json:"email,omitempty" binding:"omitempty,email" validate:"omitempty,email"`
	Phone  string   `json:"phone,omitempty"`
	Skills []string `json:"skills,omitempty"`
	Active *bool    `json:"active,omitempty"`
}

// CreateMaterialRequest is the body of POST /materials
type CreateMaterialRequest struct {
	SKU   string  `json:"sku" binding:"required" validate:"required"`
	Name  string  `json:"name" binding:"required" validate:"required"`
	Price float64 `json:"price" binding:"gte=0" validate:"gte=0"`
	Unit  string  `json:"unit"`
	Stock float64 `json:"stock" binding:"gte=0" validate:"gte=0"`
}

// CreateOrderRequest is the body of POST /orders
//
// Optional fields are pointers so that absent values are omitted from the payload
// rather than sent as empty strings.
type CreateOrderRequest struct {
	CustomerID  string                   `json:"customer_id" binding:"required"`
	InstallerID *string                  `json:"installer_id,omitempty"`
	Status      OrderStatus              `json:"status,omitempty"`
	Notes       *string                  `json:"notes,omitempty"`
	Items       []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemRequest is one line item of CreateOrderRequest
type CreateOrderItemRequest struct {
	MaterialID string   `json:"material_id" binding:"required"`
	Quantity   float64  `json:"quantity" binding:"gt=0"`
	UnitPrice  *float64 `json:"unit_price,omitempty" binding:"omitempty,gte=0"`
}

// ErrorResponse is the body of every non-success response
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
