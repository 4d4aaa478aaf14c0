package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FrederickAmakye/SMSPlus/internal/config"
	"github.com/FrederickAmakye/SMSPlus/internal/logging"
	"github.com/FrederickAmakye/SMSPlus/internal/service"
	"github.com/FrederickAmakye/SMSPlus/internal/storage/sqlite"
)

// app carries the dependencies every sub-command shares. The command
// constructors receive it and close over it, so wiring happens once in
// newRootCmd and each RunE only talks to a.svc.
type app struct {
	configPath string
	jsonOut    bool

	cfg   *config.Config
	store *sqlite.SQLite
	svc   *service.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "smsplus",
		Short:         "Manage student academic records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (CONFIG_PATH takes precedence)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newProgrammesCmd(a),
		newStatsCmd(a),
		newReportCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

// open loads config, sets up logging and opens the store.
func (a *app) open() error {
	cfg, err := config.Load(config.ResolvePath(a.configPath))
	if err != nil {
		return err
	}
	a.cfg = cfg

	log := logging.Setup(cfg.Env, cfg.LogLevel)

	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		return err
	}
	a.store = store
	a.svc = service.New(store)

	log.Debug("storage initialised", slog.String("path", cfg.StoragePath))
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
