package main

import (
	"context"
	"fmt"
	"os"

	"campusbot/app/api/mcp"
	"campusbot/app/api/rest"
	"campusbot/app/client/llm"
	"campusbot/app/config"
	"campusbot/app/service/catalog"
	"campusbot/app/service/chat"
	"campusbot/app/service/fallback"
	"campusbot/app/service/knowledge"
	"campusbot/app/service/metrics"
	"campusbot/app/service/upload"
	"campusbot/app/util/mylog"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "campusbot",
	Short:        "Computer science department assistant",
	Long:         `campusbot answers questions about the computer science program over HTTP, falling back to canned answers when the language model is unavailable.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newInjector loads config, initializes logging and registers every service lazily.
func newInjector(ctx context.Context, cmd *cobra.Command) (*do.Injector, error) {
	mylog.Preinit()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	if err = mylog.Init(cfg); err != nil {
		return nil, fmt.Errorf("logging init failed: %w", err)
	}

	di := do.New()
	do.ProvideValue(di, ctx)
	do.ProvideValue(di, cfg)

	do.Provide(di, metrics.New)
	do.Provide(di, knowledge.New)
	do.Provide(di, fallback.New)
	do.Provide(di, llm.NewClient)
	do.Provide(di, chat.New)
	do.Provide(di, catalog.New)
	do.Provide(di, upload.New)
	do.Provide(di, rest.New)
	do.Provide(di, mcp.New)

	return di, nil
}
