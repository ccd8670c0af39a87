package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"campusbot/app/domain"
	"campusbot/app/service/chat"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		di, err := newInjector(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() { _ = di.Shutdown() }()

		var history []domain.Message
		if raw, _ := cmd.Flags().GetString("history"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				return fmt.Errorf("invalid --history: %w", err)
			}
		}

		reply, err := do.MustInvoke[*chat.Service](di).GetReply(cmd.Context(), strings.Join(args, " "), history)
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "source=%s topic=%s\n", reply.Source, reply.Topic)
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)

		return nil
	},
}

func init() {
	askCmd.Flags().String("history", "", `Prior messages as a JSON array, e.g. [{"role":"user","content":"hi"}]`)
	askCmd.Flags().BoolP("verbose", "v", false, "Print where the reply came from")
	rootCmd.AddCommand(askCmd)
}
