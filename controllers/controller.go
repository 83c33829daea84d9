package controllers

import (
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
)

// Controller holds the collaborators shared by the HTTP handlers.
// The database comes from config.GetDB so tests can swap it with config.SetDB.
type Controller struct {
	Log     *logger.Logger
	Metrics *metrics.Metrics
}

func New(log *logger.Logger, m *metrics.Metrics) *Controller {
	return &Controller{Log: log, Metrics: m}
}
