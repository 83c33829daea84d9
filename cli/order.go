package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kendall-kelly/hantverk-dashboard/dashboard"
	"github.com/kendall-kelly/hantverk-dashboard/draft"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
	"github.com/kendall-kelly/hantverk-dashboard/submission"
)

func newOrderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Work with orders",
	}
	cmd.AddCommand(newOrderCreateCmd(a))
	return cmd
}

type orderFlags struct {
	file      string
	customer  string
	installer string
	status    string
	notes     string
	items     []string
	dryRun    bool
}

func newOrderCreateCmd(a *app) *cobra.Command {
	var flags orderFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order from flags or a YAML draft",
		Long: `Create an order. Rows are given as --item MATERIAL:QUANTITY[:UNIT_PRICE] where
MATERIAL is a material id or SKU. A YAML draft file may supply any field; flags
override the file's header fields and add rows after the file's rows.`,
		Example: `  dashboard order create --customer 6f1c... --item MAT-001:2 --item MAT-002:3:50
  dashboard order create --file order.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDraft(cmd, flags)
			if err != nil {
				return err
			}

			snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			d = resolveMaterials(d, snap)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, dashboard.RenderDraft(d, snap))
			if flags.dryRun {
				return nil
			}

			coordinator := submission.NewCoordinator(a.client, a.cache, a.opts.Log)
			outcome, err := coordinator.Submit(cmd.Context(), d)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, outcome.Message())
			fmt.Fprintf(out, "Order-id: %s\n", outcome.OrderID)
			if outcome.RefreshErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), refdata.FetchFailureMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "YAML draft file")
	cmd.Flags().StringVar(&flags.customer, "customer", "", "Customer id")
	cmd.Flags().StringVar(&flags.installer, "installer", "", "Installer id (optional)")
	cmd.Flags().StringVar(&flags.status, "status", "", "Status: ny, planerad, pågår, klar or fakturerad (default ny)")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "Notes")
	cmd.Flags().StringArrayVar(&flags.items, "item", nil, "Order row MATERIAL:QUANTITY[:UNIT_PRICE], repeatable")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Preview the draft and its total without creating the order")

	return cmd
}

// buildDraft starts from a fresh draft, applies the YAML file and then the flags
func buildDraft(cmd *cobra.Command, flags orderFlags) (draft.Draft, error) {
	d := draft.New()

	if flags.file != "" {
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return d, fmt.Errorf("reading draft file: %w", err)
		}
		if err := yaml.Unmarshal(data, &d); err != nil {
			return d, fmt.Errorf("parsing draft file %s: %w", flags.file, err)
		}
		if d.Status == "" {
			d.Status = models.DefaultStatus
		}
		if !d.Status.Valid() {
			return d, fmt.Errorf("unknown status %q in %s", d.Status, flags.file)
		}
	}

	changed := cmd.Flags().Changed
	if changed("customer") {
		d = d.SetCustomer(strings.TrimSpace(flags.customer))
	}
	if changed("installer") {
		d = d.SetInstaller(strings.TrimSpace(flags.installer))
	}
	if changed("status") {
		status := models.OrderStatus(strings.TrimSpace(flags.status))
		if !status.Valid() {
			return d, fmt.Errorf("unknown status %q", flags.status)
		}
		d = d.SetStatus(status)
	}
	if changed("notes") {
		d = d.SetNotes(flags.notes)
	}

	for _, raw := range flags.items {
		var err error
		if d, err = addItem(d, raw); err != nil {
			return d, err
		}
	}
	return d, nil
}

// addItem fills the untouched starter row or appends a new one
func addItem(d draft.Draft, raw string) (draft.Draft, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return d, fmt.Errorf("invalid --item %q, want MATERIAL:QUANTITY[:UNIT_PRICE]", raw)
	}

	index := len(d.Items)
	if index == 1 && d.Items[0] == draft.NewLineItem() {
		index = 0
	} else {
		d = d.AddLineItem()
	}

	d = d.UpdateLineItem(index, draft.FieldMaterial, strings.TrimSpace(parts[0]))
	d = d.UpdateLineItem(index, draft.FieldQuantity, strings.TrimSpace(parts[1]))
	if len(parts) == 3 {
		d = d.UpdateLineItem(index, draft.FieldUnitPrice, strings.TrimSpace(parts[2]))
	}
	return d, nil
}

// resolveMaterials swaps SKUs for material ids; unknown references are sent as typed
func resolveMaterials(d draft.Draft, snap *refdata.Snapshot) draft.Draft {
	for i, item := range d.Items {
		if _, ok := models.FindMaterial(snap.Materials, item.MaterialID); ok {
			continue
		}
		for _, m := range snap.Materials {
			if m.SKU == item.MaterialID {
				d = d.UpdateLineItem(i, draft.FieldMaterial, m.ID)
				break
			}
		}
	}
	return d
}
