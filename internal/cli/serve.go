package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/internal/logging"
	"github.com/mesh-intelligence/facet/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func runServe(addr string) error {
	cfg, v, err := storeConfig()
	if err != nil {
		return exitError(exitSysError, err.Error())
	}

	logFormat := v.GetString(cfgKeyLogFormat)
	logLevel := v.GetString(cfgKeyLogLevel)
	if flags.logLevel != "" {
		logLevel = flags.logLevel
	}
	log := logging.New(logging.Config{Level: logLevel, Format: logFormat})

	store, err := openStoreWith(cfg)
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer store.Detach()

	log.Info("store attached", "backend", cfg.Backend, "data_dir", cfg.DataDir)

	srv := server.New(store, log)
	if err := srv.ListenAndServe(addr); err != nil {
		return exitError(exitSysError, fmt.Sprintf("serve: %s", err))
	}
	return nil
}
