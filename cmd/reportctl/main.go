package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/pkg/config"
	"github.com/noah-isme/reading-reports-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		logr = zap.NewNop()
	}
	defer logr.Sync() //nolint:errcheck

	if err := newRootCmd(cfg, logr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logr *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "reportctl",
		Short:        "Combine and summarise reading platform exports",
		SilenceUsage: true,
	}
	opts := &rootOptions{logger: logr}
	root.PersistentFlags().StringVar(&opts.dir, "dir", cfg.Reports.Dir, "Reports directory")
	root.PersistentFlags().StringSliceVar(&opts.fallbackDirs, "fallback-dir", cfg.Reports.FallbackDirs, "Extra directories searched for exports")

	root.AddCommand(
		NewCombineCmd(opts),
		NewSummaryCmd(opts),
		NewConvertCmd(opts),
	)
	return root
}
