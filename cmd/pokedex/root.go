package main

import (
	"github.com/dom/pokedex/internal/config"
	"github.com/dom/pokedex/internal/logging"
	"github.com/dom/pokedex/internal/repository"
	"github.com/dom/pokedex/internal/repository/firebase"
	"github.com/dom/pokedex/internal/repository/pokeapi"
	"github.com/dom/pokedex/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is built once per invocation, after flags are parsed
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	services *service.Services
}

type rootOptions struct {
	catalogURL string
	storeURL   string
	logLevel   string
	pageSize   int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pokedex",
		Short: "Browse the catalog and manage your own entries",
		Long: `pokedex lists the canonical catalog merged with the entries you created,
and creates, edits or deletes your own entries in the mutable store.

Canonical entries (numeric ids) are read-only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.catalogURL, "catalog-url", "", "catalog base URL (overrides CATALOG_BASE_URL)")
	flags.StringVar(&opts.storeURL, "store-url", "", "mutable store base URL (overrides STORE_BASE_URL)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	flags.IntVar(&opts.pageSize, "page-size", 0, "catalog entries per page (overrides PAGE_SIZE)")

	rootCmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newSeedCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.catalogURL != "" {
		cfg.CatalogBaseURL = opts.catalogURL
	}
	if opts.storeURL != "" {
		cfg.StoreBaseURL = opts.storeURL
	}
	if opts.pageSize > 0 {
		cfg.PageSize = opts.pageSize
	}

	logger, err := logging.New(cfg.Environment, opts.logLevel)
	if err != nil {
		return err
	}

	repos := &repository.Repositories{
		Catalog: pokeapi.NewClient(cfg.CatalogBaseURL, cfg.HTTPTimeout),
		Store:   firebase.NewClient(cfg.StoreBaseURL, cfg.HTTPTimeout),
	}

	a.cfg = cfg
	a.logger = logger
	a.services = service.NewServices(repos, cfg, service.NopNotifier{}, logger)
	return nil
}

func (a *app) close() {
	if a.services != nil {
		a.services.Mutations.Wait()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
