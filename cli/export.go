package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/hantverk-dashboard/services"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Archive the current reference data to S3",
		Long:  "Fetch customers, installers, materials and orders and upload them as one JSON snapshot to AWS_S3_BUCKET.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.opts.ObjectStore
			if store == nil {
				if !a.opts.Config.ArchiveEnabled() {
					return fmt.Errorf("AWS_S3_BUCKET is not set")
				}
				s3, err := services.NewS3Service(cmd.Context(), a.opts.Config)
				if err != nil {
					return err
				}
				store = s3
			}

			snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			result, err := services.NewArchiveService(store).Archive(cmd.Context(), snap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sparad: %s\n", result.Key)
			fmt.Fprintf(out, "Länk:   %s\n", result.URL)
			return nil
		},
	}
}
