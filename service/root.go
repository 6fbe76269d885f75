package service

import (
	"fmt"
	"os"

	"quill/app/config"
	"quill/app/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is reported by the version command.
const Version = "1.0.0"

var osExit = os.Exit

// cli holds the global flags shared by every subcommand.
type cli struct {
	databaseURL string
	logLevel    string
}

// NewRootCommand builds the quill command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "quill",
		Short: "Quill - a small blog with posts, comments and an admin",
		Long: `Quill serves a blog where the first registered account is the admin.

The admin writes, edits and deletes posts; every other account may comment.
Data lives in sqlite by default and can be moved to badger, postgres or mysql
through DATABASE_URL or --database-url.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.databaseURL, "database-url", "", "Database URL (overrides DATABASE_URL)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.cleanCommand(),
		c.backupCommand(),
		c.restoreCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

// config loads the environment and applies flag overrides.
func (c *cli) config() *config.Config {
	cfg := config.Load()
	if c.databaseURL != "" {
		cfg.DatabaseURL = c.databaseURL
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	return cfg
}

func (c *cli) logger(cfg *config.Config) *logrus.Logger {
	return logging.New(cfg.LogLevel, cfg.IsProduction())
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quill version %s\n", Version)
		},
	}
}
