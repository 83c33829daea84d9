// Package cli is the terminal front end of the dashboard: it reads and creates
// reference data through the REST backend.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/hantverk-dashboard/apiclient"
	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/refdata"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

// Options are the collaborators of the commands. Zero values are built from Config.
type Options struct {
	Config *config.Config
	Log    *logger.Logger
	Client *apiclient.Client
	// ObjectStore backs "export"; when nil an S3 store is created from Config
	ObjectStore services.ObjectStore
}

type app struct {
	opts       Options
	backendURL string
	logLevel   string
	client     *apiclient.Client
	cache      *refdata.Cache
}

// NewRootCmd builds the dashboard command tree
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Hantverk dashboard",
		Long:          "Show and create customers, installers, materials and orders through the dashboard backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVar(&a.backendURL, "backend-url", "", "Backend base URL (default BACKEND_URL, else http://localhost:PORT)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (default LOG_LEVEL)")

	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newOrderCmd(a))
	cmd.AddCommand(newCustomerCmd(a))
	cmd.AddCommand(newInstallerCmd(a))
	cmd.AddCommand(newMaterialCmd(a))
	cmd.AddCommand(newExportCmd(a))
	return cmd
}

// Execute loads the configuration and runs the command named by the process arguments
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return NewRootCmd(Options{Config: cfg}).Execute()
}

func (a *app) init(stderr io.Writer) error {
	cfg := a.opts.Config

	if a.opts.Log == nil {
		level := a.logLevel
		if level == "" {
			level = cfg.LogLevel
		}
		a.opts.Log = logger.New(logger.Options{
			ServiceName: "hantverk-dashboard",
			Level:       logger.ParseLevel(level),
			Format:      "console",
			Output:      stderr,
		})
	}

	a.client = a.opts.Client
	if a.client == nil {
		clientOpts := []apiclient.Option{apiclient.WithLogger(a.opts.Log)}
		if cfg.RequestTimeout > 0 {
			clientOpts = append(clientOpts, apiclient.WithTimeout(cfg.RequestTimeout))
		}
		a.client = apiclient.New(a.baseURL(), clientOpts...)
	}
	a.cache = refdata.New(a.client, a.opts.Log)
	return nil
}

// baseURL picks the flag, then BACKEND_URL, then the local server on PORT
func (a *app) baseURL() string {
	if a.backendURL != "" {
		return a.backendURL
	}
	if a.opts.Config.BackendURL != "" {
		return a.opts.Config.BackendURL
	}
	port := a.opts.Config.Port
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}

// load refreshes the reference data every command starts from
func (a *app) load(ctx context.Context) (*refdata.Snapshot, error) {
	if err := a.cache.Refresh(ctx); err != nil {
		return a.cache.Snapshot(), fmt.Errorf("%s: %w", refdata.FetchFailureMessage, err)
	}
	return a.cache.Snapshot(), nil
}
