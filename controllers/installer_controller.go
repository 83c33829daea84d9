package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// ListInstallers handles GET /installers
func (ctl *Controller) ListInstallers(c *gin.Context) {
	installers := []models.Installer{}
	if err := config.GetDB().Order("name ASC").Find(&installers).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "installers.list_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte hämta montörer")
		return
	}
	c.JSON(http.StatusOK, installers)
}

// CreateInstaller handles POST /installers; active defaults to true
func (ctl *Controller) CreateInstaller(c *gin.Context) {
	var req models.CreateInstallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, bindingDetail(err))
		return
	}

	installer := models.Installer{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Phone:  strings.TrimSpace(req.Phone),
		Skills: cleanSkills(req.Skills),
		Active: true,
	}
	if req.Active != nil {
		installer.Active = *req.Active
	}
	if installer.Name == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "name is required")
		return
	}

	if err := config.GetDB().Create(&installer).Error; err != nil {
		ctl.Log.Error(c.Request.Context(), "installers.create_failed", err)
		respondError(c, http.StatusInternalServerError, CodeDatabase, "Kunde inte skapa montör")
		return
	}

	ctl.Log.Info(ctl.Log.WithField(c.Request.Context(), "installer_id", installer.ID), "installers.created")
	c.JSON(http.StatusCreated, installer)
}

func cleanSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			cleaned = append(cleaned, skill)
		}
	}
	return cleaned
}
