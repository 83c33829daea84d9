package draft

import (
	"fmt"

	"github.com/kendall-kelly/hantverk-dashboard/utils"
)

// InvalidDraftMessage is shown next to the form when a draft cannot be submitted
const InvalidDraftMessage = "Fyll i kund och minst en giltig orderrad"

// ValidationError explains why a draft is not submittable
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return InvalidDraftMessage
}

// Validate returns a *ValidationError when the draft is not submittable, otherwise nil.
// A draft needs a customer, at least one row, and every row needs a material and a
// quantity above zero. Malformed quantities fail the quantity check.
func Validate(d Draft) error {
	if d.CustomerID == "" {
		return &ValidationError{Reason: "customer is required"}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Reason: "at least one line item is required"}
	}
	for i, item := range d.Items {
		if item.MaterialID == "" {
			return &ValidationError{Reason: fmt.Sprintf("row %d: material is required", i+1)}
		}
		quantity, ok := utils.ParseNumber(item.Quantity)
		if !ok || !quantity.IsPositive() {
			return &ValidationError{Reason: fmt.Sprintf("row %d: quantity must be greater than 0", i+1)}
		}
	}
	return nil
}

// IsSubmittable reports whether Validate accepts the draft
func IsSubmittable(d Draft) bool {
	return Validate(d) == nil
}
