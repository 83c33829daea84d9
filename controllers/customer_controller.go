package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// ListCustomers handles GET /customers
func (ctl *Controller) ListCustomers(c *gin.Context) {
	customers := []models.Customer{}
	if err := config.GetDB().Order("name ASC").Find(&customers).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "customers.list_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta kunder")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// CreateCustomer handles POST /customers
func (ctl *Controller) CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, bindingDetail(err))
		return
	}

	customer := models.Customer{
		Name:    strings.TrimSpace(req.Name),
		Company: strings.TrimSpace(req.Company),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
	}
	if customer.Name == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "name is required")
		return
	}

	if err := config.GetDB().Create(&customer).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "customers.create_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa kund")
		return
	}

	ctl.Log.Info(ctl.Log.WithField(c.Request.Context(), "customer_id", customer.ID), "customers.created")
	c.JSON(http.StatusCreated, customer)
}
