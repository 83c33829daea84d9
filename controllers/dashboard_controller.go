package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/dashboard"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
)

// DashboardSummary handles GET /dashboard/summary with the same aggregation the client uses
func (ctl *Controller) DashboardSummary(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())
	snap := &refdata.Snapshot{}

	queries := []func() error{
		func() error { return db.Order("name ASC").Find(&snap.Customers).Error },
		func() error { return db.Order("name ASC").Find(&snap.Installers).Error },
		func() error { return db.Order("name ASC").Find(&snap.Materials).Error },
		func() error {
			return db.Preload("Customer").Preload("Installer").Order("created_at DESC").Find(&snap.Orders).Error
		},
	}
	for _, query := range queries {
		if err := query(); err != nil {
			ctl.Log.Error(c.Request.Context(), "dashboard.summary_failed", err)
			respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta data")
			return
		}
	}
	snap.FetchedAt = time.Now()

	c.JSON(http.StatusOK, dashboard.Build(snap))
}
