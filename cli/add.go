package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/hantverk-dashboard/quickadd"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
)

func newCustomerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "customer", Short: "Work with customers"}

	var form quickadd.CustomerForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.quickAdd(cmd, func(ctx context.Context, svc *quickadd.Service) (quickadd.Result, error) {
				return svc.AddCustomer(ctx, form)
			})
		},
	}
	add.Flags().StringVar(&form.Name, "name", "", "Name (required)")
	add.Flags().StringVar(&form.Company, "company", "", "Company")
	add.Flags().StringVar(&form.Email, "email", "", "Email")
	add.Flags().StringVar(&form.Phone, "phone", "", "Phone")

	cmd.AddCommand(add)
	return cmd
}

func newInstallerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "installer", Short: "Work with installers"}

	var form quickadd.InstallerForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an installer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.quickAdd(cmd, func(ctx context.Context, svc *quickadd.Service) (quickadd.Result, error) {
				return svc.AddInstaller(ctx, form)
			})
		},
	}
	add.Flags().StringVar(&form.Name, "name", "", "Name (required)")
	add.Flags().StringVar(&form.Email, "email", "", "Email")
	add.Flags().StringVar(&form.Phone, "phone", "", "Phone")
	add.Flags().StringVar(&form.Skills, "skills", "", "Comma separated skills, e.g. \"golv, kakel\"")

	cmd.AddCommand(add)
	return cmd
}

func newMaterialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "material", Short: "Work with materials"}

	var form quickadd.MaterialForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.quickAdd(cmd, func(ctx context.Context, svc *quickadd.Service) (quickadd.Result, error) {
				return svc.AddMaterial(ctx, form)
			})
		},
	}
	add.Flags().StringVar(&form.SKU, "sku", "", "Article number (required)")
	add.Flags().StringVar(&form.Name, "name", "", "Name (required)")
	add.Flags().StringVar(&form.Price, "price", "", "Price per unit in kr (default 0)")
	add.Flags().StringVar(&form.Unit, "unit", "", "Unit (default st)")
	add.Flags().StringVar(&form.Stock, "stock", "", "Stock (default 0)")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) quickAdd(cmd *cobra.Command, add func(context.Context, *quickadd.Service) (quickadd.Result, error)) error {
	svc := quickadd.NewService(a.client, a.cache, a.opts.Log)
	result, err := add(cmd.Context(), svc)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if result.RefreshErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), refdata.FetchFailureMessage)
	}
	return nil
}
