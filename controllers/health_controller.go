package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/config"
)

// HealthCheck handles GET /health
func (ctl *Controller) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Hantverkar Dashboard API is running",
	})
}

// DatabaseStatus checks database connectivity and returns table information
func (ctl *Controller) DatabaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		ctl.Log.Error(c.Request.Context(), "database.instance_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Failed to get database instance")
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		ctl.Log.Error(c.Request.Context(), "database.ping_failed", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		ctl.Log.Error(c.Request.Context(), "database.tables_failed", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Database connected",
		"driver":  db.Dialector.Name(),
		"tables":  tables,
	})
}
