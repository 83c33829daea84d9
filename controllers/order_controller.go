package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/pricing"
)

// ListOrders handles GET /orders, newest first with names and items for display
func (ctl *Controller) ListOrders(c *gin.Context) {
	orders := []models.Order{}
	err := config.GetDB().
		Preload("Customer").
		Preload("Installer").
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		ctl.Log.Error(c.Request.Context(), "orders.list_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta ordrar")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CreateOrder handles POST /orders.
// Every item is priced at its override or the material's catalog price and the order
// total is the exact sum of quantity × unit price. Stock is not decremented.
func (ctl *Controller) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, bindingDetail(err))
		return
	}

	status := req.Status
	if status == "" {
		status = models.DefaultStatus
	}
	if !status.Valid() {
		respondError(c, http.StatusBadRequest, CodeValidation, "Okänd status: "+string(status))
		return
	}

	db := config.GetDB()

	if err := db.Select("id").First(&models.Customer{}, "id = ?", req.CustomerID).Error; err != nil {
		ctl.referenceError(c, err, "Kunden finns inte")
		return
	}

	var installerID *string
	if req.InstallerID != nil && strings.TrimSpace(*req.InstallerID) != "" {
		id := strings.TrimSpace(*req.InstallerID)
		if err := db.Select("id").First(&models.Installer{}, "id = ?", id).Error; err != nil {
			ctl.referenceError(c, err, "Montören finns inte")
			return
		}
		installerID = &id
	}

	var notes *string
	if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
		trimmed := strings.TrimSpace(*req.Notes)
		notes = &trimmed
	}

	materialIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		materialIDs = append(materialIDs, item.MaterialID)
	}
	materials := []models.Material{}
	if err := db.Where("id IN ?", materialIDs).Find(&materials).Error; err != nil {
		ctl.Log.Error(ctx, "orders.materials_lookup_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa order")
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		material, ok := models.FindMaterial(materials, item.MaterialID)
		if !ok {
			respondError(c, http.StatusUnprocessableEntity, CodeUnprocessable, "Materialet finns inte: "+item.MaterialID)
			return
		}

		unitPrice := decimal.NewFromFloat(material.Price)
		if item.UnitPrice != nil {
			unitPrice = decimal.NewFromFloat(*item.UnitPrice)
		}
		lineTotal := pricing.Extend(decimal.NewFromFloat(item.Quantity), unitPrice)
		total = total.Add(lineTotal)

		items = append(items, models.OrderItem{
			MaterialID: material.ID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice.InexactFloat64(),
			LineTotal:  lineTotal.InexactFloat64(),
		})
	}

	order := models.Order{
		CustomerID:  req.CustomerID,
		InstallerID: installerID,
		Status:      status,
		Notes:       notes,
		Items:       items,
		Total:       total.InexactFloat64(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		ctl.Log.Error(ctx, "orders.create_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa order")
		return
	}

	// Reload so the response carries display names like GET /orders does
	var created models.Order
	if err := db.Preload("Customer").Preload("Installer").Preload("Items").First(&created, "id = ?", order.ID).Error; err != nil {
		ctl.Log.Error(ctx, "orders.reload_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta ordern")
		return
	}

	ctl.Metrics.OrderCreated(string(created.Status), created.Total)
	ctl.Log.Info(ctl.Log.WithFields(ctx, map[string]any{
		"order_id": created.ID,
		"total":    pricing.FormatFloat(created.Total),
		"items":    len(created.Items),
	}), "orders.created")

	c.JSON(http.StatusCreated, created)
}

// referenceError answers a failed lookup of a referenced entity
func (ctl *Controller) referenceError(c *gin.Context, err error, detail string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusUnprocessableEntity, CodeUnprocessable, detail)
		return
	}
	ctl.Log.Error(c.Request.Context(), "orders.reference_lookup_failed", err)
	respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa order")
}
