package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// ListMaterials handles GET /materials
func (ctl *Controller) ListMaterials(c *gin.Context) {
	materials := []models.Material{}
	if err := config.GetDB().Order("name ASC").Find(&materials).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "materials.list_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta material")
		return
	}
	c.JSON(http.StatusOK, materials)
}

// CreateMaterial handles POST /materials; the SKU must be unique
func (ctl *Controller) CreateMaterial(c *gin.Context) {
	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, bindingDetail(err))
		return
	}

	material := models.Material{
		SKU:   strings.TrimSpace(req.SKU),
		Name:  strings.TrimSpace(req.Name),
		Price: req.Price,
		Unit:  strings.TrimSpace(req.Unit),
		Stock: req.Stock,
	}
	if material.SKU == "" || material.Name == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "sku and name are required")
		return
	}

	db := config.GetDB()
	var existing models.Material
	err := db.Where("sku = ?", material.SKU).First(&existing).Error
	switch {
	case err == nil:
		respondError(c, http.StatusConflict, CodeConflict, "Artikelnumret "+material.SKU+" finns redan")
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		ctl.Log.Error(c.Request.Context(), "materials.lookup_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa material")
		return
	}

	if err := db.Create(&material).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "materials.create_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa material")
		return
	}

	ctl.Log.Info(ctl.Log.WithField(c.Request.Context(), "material_id", material.ID), "materials.created")
	c.JSON(http.StatusCreated, material)
}
