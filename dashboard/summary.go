// Package dashboard aggregates a reference data snapshot into the overview screen.
package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/pricing"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
)

const (
	LatestOrdersLimit = 8
	CustomersLimit    = 6
	MaterialsLimit    = 8
	InstallersLimit   = 6

	ActiveLabel   = "Aktiv"
	InactiveLabel = "Inaktiv"
)

type Counts struct {
	Customers  int `json:"customers"`
	Installers int `json:"installers"`
	Materials  int `json:"materials"`
	Orders     int `json:"orders"`
}

type OrderRow struct {
	ID        string             `json:"id"`
	ShortID   string             `json:"short_id"`
	Customer  string             `json:"customer"`
	Installer string             `json:"installer"`
	Status    models.OrderStatus `json:"status"`
	Total     string             `json:"total"`
}

type CustomerRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type MaterialRow struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

type InstallerRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Skills string `json:"skills"`
	Status string `json:"status"`
}

// Summary is everything the overview screen shows
type Summary struct {
	Counts Counts `json:"counts"`
	// Revenue is the sum of the backend's order totals with two decimals
	Revenue      string         `json:"revenue"`
	LatestOrders []OrderRow     `json:"latest_orders"`
	Customers    []CustomerRow  `json:"customers"`
	Materials    []MaterialRow  `json:"materials"`
	Installers   []InstallerRow `json:"installers"`
}

// Build aggregates snap. Collections keep the backend's order; orders arrive newest first.
func Build(snap *refdata.Snapshot) Summary {
	if snap == nil {
		snap = &refdata.Snapshot{}
	}

	summary := Summary{
		Counts: Counts{
			Customers:  len(snap.Customers),
			Installers: len(snap.Installers),
			Materials:  len(snap.Materials),
			Orders:     len(snap.Orders),
		},
		Revenue:      pricing.FormatAmount(Revenue(snap.Orders)),
		LatestOrders: make([]OrderRow, 0, min(len(snap.Orders), LatestOrdersLimit)),
		Customers:    make([]CustomerRow, 0, min(len(snap.Customers), CustomersLimit)),
		Materials:    make([]MaterialRow, 0, min(len(snap.Materials), MaterialsLimit)),
		Installers:   make([]InstallerRow, 0, min(len(snap.Installers), InstallersLimit)),
	}

	for _, order := range head(snap.Orders, LatestOrdersLimit) {
		summary.LatestOrders = append(summary.LatestOrders, orderRow(order))
	}
	for _, customer := range head(snap.Customers, CustomersLimit) {
		summary.Customers = append(summary.Customers, CustomerRow{
			ID:      customer.ID,
			Name:    customer.Name,
			Contact: customer.Contact(),
		})
	}
	for _, material := range head(snap.Materials, MaterialsLimit) {
		summary.Materials = append(summary.Materials, MaterialRow{
			ID:    material.ID,
			SKU:   material.SKU,
			Name:  material.Name,
			Price: UnitPrice(material),
			Stock: decimal.NewFromFloat(material.Stock).String(),
		})
	}
	for _, installer := range head(snap.Installers, InstallersLimit) {
		status := InactiveLabel
		if installer.Active {
			status = ActiveLabel
		}
		summary.Installers = append(summary.Installers, InstallerRow{
			ID:     installer.ID,
			Name:   installer.Name,
			Skills: strings.Join(installer.Skills, ", "),
			Status: status,
		})
	}
	return summary
}

// Revenue sums the authoritative totals of orders
func Revenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(decimal.NewFromFloat(order.Total))
	}
	return total
}

// UnitPrice renders a catalog price as "<price> kr/<unit>", e.g. "199 kr/st"
func UnitPrice(material models.Material) string {
	unit := material.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}
	return decimal.NewFromFloat(material.Price).String() + " kr/" + unit
}

func orderRow(order models.Order) OrderRow {
	customer := order.CustomerName
	if customer == "" {
		customer = order.CustomerID
	}
	installer := order.InstallerName
	if installer == "" {
		installer = "-"
	}
	return OrderRow{
		ID:        order.ID,
		ShortID:   order.ShortID(),
		Customer:  customer,
		Installer: installer,
		Status:    order.Status,
		Total:     pricing.FormatFloat(order.Total),
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
