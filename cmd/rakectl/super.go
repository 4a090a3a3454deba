package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSuperCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "super",
		Short: "Manage super properties",
		Long: `Manage the super properties merged into every event of a token.

Changes are written to the database named by --db (or store_path) and are
picked up by the next track call.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the super properties as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(sess *session) error {
				return writeJSON(cmd.OutOrStdout(), sess.client.SuperProperties())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "register <json>",
		Short:   "Add or replace super properties",
		Example: `  rakectl super register --db rake.db -t tok-123 '{"plan":"pro"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseProps(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(sess *session) error {
				sess.client.RegisterSuperProperties(props)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "register-once <json>",
		Short: "Add super properties that are not set yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseProps(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(sess *session) error {
				sess.client.RegisterSuperPropertiesOnce(props)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unregister <key>",
		Short: "Remove one super property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(sess *session) error {
				sess.client.UnregisterSuperProperty(args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every super property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(sess *session) error {
				sess.client.ClearSuperProperties()
				return nil
			})
		},
	})

	return cmd
}

// withSession runs fn against a fresh session and closes it afterwards.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(*session) error) (err error) {
	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.close(); err == nil && cerr != nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	return fn(sess)
}
