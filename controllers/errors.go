package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// Error codes carried next to the human readable detail
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeDatabase      = "DATABASE_ERROR"
	CodeUnprocessable = "UNPROCESSABLE"
)

// respondError writes the {"detail","code"} body clients show to the user
func respondError(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: detail, Code: code})
}

// bindingDetail turns a gin binding error into one readable sentence
func bindingDetail(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "Ogiltig förfrågan"
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		parts = append(parts, fmt.Sprintf("%s %s", fieldName(fe), validationMessage(fe)))
	}
	return strings.Join(parts, ", ")
}

// fieldName maps the Go field to its json name, keeping the item index for line items
func fieldName(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	replacer := strings.NewReplacer(
		"CustomerID", "customer_id",
		"InstallerID", "installer_id",
		"MaterialID", "material_id",
		"UnitPrice", "unit_price",
		"Quantity", "quantity",
		"Items", "items",
		"Name", "name",
		"Email", "email",
		"SKU", "sku",
		"Price", "price",
		"Stock", "stock",
	)
	return replacer.Replace(namespace)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}
