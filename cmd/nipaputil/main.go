package main

import (
	"context"
	"encoding/json"
	"os"

	"nipaputil/config"
	"nipaputil/internal/db"
	"nipaputil/internal/logs"
	"nipaputil/internal/nipap"
	"nipaputil/internal/vlan"
	"nipaputil/server"

	"github.com/spf13/cobra"
)

func main() {
	if c, err := mainCmd.ExecuteC(); err != nil {
		c.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

var (
	mainCmd = &cobra.Command{
		Use:           "nipaputil",
		Short:         "VRF, prefix, pool and VLAN bookkeeping on top of NIPAP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			c, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = c
			logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var a server.App
			if err := a.Initialize(cmd.Context(), cfg); err != nil {
				return err
			}
			return a.Run()
		},
	}

	cfg *config.Config
)

func init() {
	mainCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ./nipaputil.yaml or /etc/nipaputil/nipaputil.yaml)")

	mainCmd.AddCommand(
		serveCmd,
		vrfCmd,
		prefixCmd,
		poolCmd,
		vlanCmd,
	)
}

func dialNipap(ctx context.Context) (*nipap.Client, error) {
	return nipap.Dial(ctx, nipap.Options{
		URI:          cfg.Nipap.URI,
		Host:         cfg.Nipap.Addr(),
		ClientName:   cfg.Nipap.ClientName,
		ProbeTimeout: cfg.Nipap.ProbeTimeout,
	})
}

// openDB подменяется в тестах.
var openDB = db.Open

// openStore открывает psb_vlan так же, как serve: с миграцией уникального индекса.
// Вызывающий закрывает соединения через возвращённую функцию.
func openStore() (*vlan.Store, func(), error) {
	d, err := openDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if d == nil {
			return
		}
		if sqlDB, err := d.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if d != nil {
		if err := db.MigrateVlanTable(d); err != nil {
			logs.Logger.Warnf("psb_vlan migration: %v", err)
		}
	}
	return vlan.NewStore(d), closeDB, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
