package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kendall-kelly/hantverk-dashboard/draft"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/pricing"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
)

var (
	accent  = lipgloss.Color("#3B82F6")
	fg      = lipgloss.Color("#E2E8F0")
	dim     = lipgloss.Color("#64748B")
	faint   = lipgloss.Color("#334155")
	success = lipgloss.Color("#10B981")
	danger  = lipgloss.Color("#EF4444")
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(danger).
			Foreground(danger).
			Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	faintStyle   = lipgloss.NewStyle().Foreground(faint)
	passStyle    = lipgloss.NewStyle().Foreground(success)
	failStyle    = lipgloss.NewStyle().Foreground(danger)
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorRow = faintStyle.Render(strings.Repeat("─", 64))
)

// Render draws the overview. A non-nil fetchErr adds the fetch failure banner above
// whatever data the summary still holds.
func Render(s Summary, fetchErr error) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Hantverkar Dashboard") + "\n")
	b.WriteString(dimStyle.Render("Hantera ordrar, material, montörer och kunder") + "\n\n")

	if fetchErr != nil {
		b.WriteString(bannerStyle.Render(refdata.FetchFailureMessage) + "\n\n")
	}

	renderCounts(&b, s)
	renderOrders(&b, s.LatestOrders)
	renderCustomers(&b, s.Customers)
	renderMaterials(&b, s.Materials)
	renderInstallers(&b, s.Installers)
	return b.String()
}

func renderCounts(b *strings.Builder, s Summary) {
	stat := func(label, value string) string {
		return dimStyle.Render(label) + "\n" + valueStyle.Render(value)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(stat("Kunder", fmt.Sprint(s.Counts.Customers))),
		boxStyle.Render(stat("Montörer", fmt.Sprint(s.Counts.Installers))),
		boxStyle.Render(stat("Material", fmt.Sprint(s.Counts.Materials))),
		boxStyle.Render(stat("Intäkter (SEK)", s.Revenue)),
	)
	b.WriteString(row + "\n\n")
}

func renderOrders(b *strings.Builder, rows []OrderRow) {
	b.WriteString(sectionStyle.Render("Senaste ordrar") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %-22s %-18s %-12s %12s", "Order", "Kund", "Montör", "Status", "Belopp")) + "\n")
	b.WriteString("  " + separatorRow + "\n")
	if len(rows) == 0 {
		b.WriteString("  " + dimStyle.Render("Inga ordrar ännu") + "\n\n")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(b, "  %-8s %-22s %-18s %-12s %12s\n",
			r.ShortID, truncate(r.Customer, 22), truncate(r.Installer, 18), r.Status, r.Total)
	}
	b.WriteString("\n")
}

func renderCustomers(b *strings.Builder, rows []CustomerRow) {
	b.WriteString(sectionStyle.Render("Kunder") + "\n")
	for _, r := range rows {
		line := "  " + valueStyle.Render(r.Name)
		if r.Contact != "" {
			line += "  " + dimStyle.Render(r.Contact)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func renderMaterials(b *strings.Builder, rows []MaterialRow) {
	b.WriteString(sectionStyle.Render("Material") + "\n")
	for _, r := range rows {
		fmt.Fprintf(b, "  %s  %s  %s  %s\n",
			valueStyle.Render(r.Name),
			dimStyle.Render("SKU: "+r.SKU),
			r.Price,
			dimStyle.Render("Lager: "+r.Stock))
	}
	b.WriteString("\n")
}

func renderInstallers(b *strings.Builder, rows []InstallerRow) {
	b.WriteString(sectionStyle.Render("Montörer") + "\n")
	for _, r := range rows {
		status := failStyle.Render(r.Status)
		if r.Status == ActiveLabel {
			status = passStyle.Render(r.Status)
		}
		line := "  " + valueStyle.Render(r.Name)
		if r.Skills != "" {
			line += "  " + dimStyle.Render(r.Skills)
		}
		b.WriteString(line + "  " + status + "\n")
	}
}

// RenderDraft previews an order draft with per row totals and the grand total.
// Names are resolved from snap; unresolved references show their raw id.
func RenderDraft(d draft.Draft, snap *refdata.Snapshot) string {
	if snap == nil {
		snap = &refdata.Snapshot{}
	}
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Skapa ny order") + "\n")
	fmt.Fprintf(&b, "  Kund:   %s\n", customerName(d.CustomerID, snap.Customers))
	fmt.Fprintf(&b, "  Montör: %s\n", installerName(d.InstallerID, snap.Installers))
	fmt.Fprintf(&b, "  Status: %s\n", d.Status)
	if d.Notes != "" {
		fmt.Fprintf(&b, "  Anteckningar: %s\n", d.Notes)
	}
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-3s %-24s %10s %12s %12s", "#", "Material", "Antal", "À-pris", "Summa")) + "\n")
	b.WriteString("  " + separatorRow + "\n")
	for i, item := range d.Items {
		fmt.Fprintf(&b, "  %-3d %-24s %10s %12s %12s\n",
			i+1,
			truncate(materialName(item.MaterialID, snap.Materials), 24),
			item.Quantity,
			pricing.FormatAmount(pricing.EffectiveUnitPrice(item, snap.Materials)),
			pricing.FormatAmount(pricing.LineTotal(item, snap.Materials)))
	}
	b.WriteString("  " + separatorRow + "\n")
	b.WriteString("  " + valueStyle.Render(fmt.Sprintf("Totalt: %s kr", pricing.FormatAmount(pricing.DraftTotal(d, snap.Materials)))) + "\n")

	if !draft.IsSubmittable(d) {
		b.WriteString("  " + failStyle.Render(draft.InvalidDraftMessage) + "\n")
	}
	return b.String()
}

func customerName(id string, customers []models.Customer) string {
	if id == "" {
		return "-"
	}
	for _, c := range customers {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func installerName(id string, installers []models.Installer) string {
	if id == "" {
		return "-"
	}
	for _, i := range installers {
		if i.ID == id {
			return i.Name
		}
	}
	return id
}

func materialName(id string, materials []models.Material) string {
	if id == "" {
		return "-"
	}
	if m, ok := models.FindMaterial(materials, id); ok {
		return m.Name
	}
	return id
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
