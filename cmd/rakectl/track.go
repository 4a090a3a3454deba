package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newTrackCommand(opts *rootOptions) *cobra.Command {
	var props string

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track one event",
		Long: `Track one event with the properties given as a JSON object.

Super properties, timestamps and environment properties are merged in as
they would be by an application client.`,
		Example: `  rakectl track -t tok-123 --props '{"event":"open","screen":"home"}'
  rakectl track -c rake.yaml --dry-run --props '{"event":"open"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseProps(props)
			if err != nil {
				return err
			}
			return runTrack(cmd, opts, parsed)
		},
	}

	cmd.Flags().StringVarP(&props, "props", "p", "{}", "event properties as a JSON object")
	return cmd
}

func runTrack(cmd *cobra.Command, opts *rootOptions, props map[string]any) error {
	return withSession(cmd, opts, func(sess *session) error {
		sess.client.Track(props)

		if sess.dryRun == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "queued")
			return nil
		}

		doc := sess.dryRun.Last()
		if doc == nil {
			return fmt.Errorf("event was dropped")
		}
		return writeJSON(cmd.OutOrStdout(), doc)
	})
}

// parseProps decodes a JSON object given on the command line.
func parseProps(raw string) (map[string]any, error) {
	var props map[string]any
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("props must be a JSON object: %w", err)
	}
	if props == nil {
		return nil, fmt.Errorf("props must be a JSON object, got null")
	}
	return props, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
