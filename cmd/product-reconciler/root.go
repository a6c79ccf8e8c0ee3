package main

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
)

func newRootCmd() *cobra.Command {
	var cfg config.Config
	root := &cobra.Command{
		Use:           "product-reconciler",
		Short:         "Product store and client-side collection reconciler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg = config.Load()
			obs.InitLogger(cfg.LogLevel, cfg.LogFormat)
		},
	}
	root.AddCommand(newServeCmd(&cfg), newSyncCmd(&cfg))
	return root
}
