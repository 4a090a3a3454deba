package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/rake/pkg/rake"
	"github.com/randalmurphal/rake/pkg/rake/config"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	Token      string
	DBPath     string
	Scope      string
	Dev        bool
	DryRun     bool
	Debug      bool

	// settings is resolved in PersistentPreRunE.
	settings config.Settings
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rakectl",
		Short: "Track rake events and manage super properties",
		Long: `rakectl composes rake events the way an application client would.

Settings come from --config (YAML or JSON) and are overridden by flags.
Super properties persist in the SQLite database named by --db or store_path.
With --dry-run nothing is sent; tracked documents are printed instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "settings file (.yaml, .yml or .json)")
	flags.StringVarP(&opts.Token, "token", "t", "", "client token")
	flags.StringVar(&opts.DBPath, "db", "", "SQLite database for super properties")
	flags.StringVar(&opts.Scope, "scope", "rakectl", "application scope of the client")
	flags.BoolVar(&opts.Dev, "dev", false, "send to the dev collector")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "print documents instead of sending them")
	flags.BoolVar(&opts.Debug, "debug", false, "log diagnostics to stderr")

	cmd.AddCommand(newTrackCommand(opts))
	cmd.AddCommand(newSuperCommand(opts))
	cmd.AddCommand(newFlushCommand(opts))

	return cmd
}

// resolve loads the settings file and applies flag overrides.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	settings := config.Defaults()
	if o.ConfigPath != "" {
		loaded, err := config.FromFile(o.ConfigPath)
		if err != nil {
			return err
		}
		settings = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		settings.Token = o.Token
	}
	if flags.Changed("db") {
		settings.StorePath = o.DBPath
	}
	if flags.Changed("dev") {
		settings.DevServer = o.Dev
	}
	if flags.Changed("debug") {
		settings.Debug = o.Debug
	}

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	rake.SetDebug(settings.Debug)
	o.settings = settings
	return nil
}

// logger writes to the command's stderr; debug mode lowers the level.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.settings.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
