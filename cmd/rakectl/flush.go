package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFlushCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Send queued events now",
		Long: `Ask the delivery queue to send whatever it holds and wait for it to drain.

Each rakectl invocation has its own queue, so this mainly checks that the
collector endpoint is reachable with the current settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(sess *session) error {
				sess.client.Flush()
				fmt.Fprintln(cmd.OutOrStdout(), "flushed", sess.client.Token())
				return nil
			})
		},
	}
}
