package main

import (
	"log/slog"

	"campusbot/app/api/mcp"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol server over stdio",
	Long: `Starts campusbot as an MCP server on standard input/output.
Logs go to stderr so they never corrupt the JSON-RPC stream.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		di, err := newInjector(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() { _ = di.Shutdown() }()

		slog.Info("Starting MCP server (stdio)")

		return do.MustInvoke[*mcp.Server](di).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
