package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"campusbot/app/api/rest"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	di, err := newInjector(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("Waiting for services to finish...")
		_ = di.Shutdown()
	}()

	server := do.MustInvoke[*rest.Server](di)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(server.Listen)
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("Shutting down...")
		return server.Shutdown()
	})

	slog.Info("Service started")

	return group.Wait()
}

