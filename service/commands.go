package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quill/app/repositories"

	"github.com/spf13/cobra"
)

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			store, err := repositories.Open(cmd.Context(), cfg.DatabaseURL, c.logger(cfg))
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database schema is up to date (%s)\n", store.Location.Backend)
			return nil
		},
	}
}

func (c *cli) cleanCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.embeddedLocation()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !exists(loc.DSN) {
				fmt.Fprintln(out, "Database is already clean (does not exist)")
				return nil
			}
			if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}
			if err := removeDatabase(loc); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Fprintln(out, "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *cli) backupCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the local database",
		Long: `Write a backup of the local database.

Badger databases use badger's native backup format. Sqlite databases are
copied with VACUUM INTO and can be opened directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.embeddedLocation()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists(loc.DSN) {
				fmt.Fprintln(out, "No database exists to backup")
				return nil
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}
			dest := filepath.Join(dir, fmt.Sprintf("backup_%s_%d.db", loc.Backend, time.Now().UnixNano()))

			cfg := c.config()
			store, err := repositories.Open(cmd.Context(), cfg.DatabaseURL, c.logger(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Backup(cmd.Context(), dest); err != nil {
				return err
			}
			fmt.Fprintf(out, "Database backed up successfully to %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", filepath.Join("data", "backups"), "Directory for backup files")
	return cmd
}

func (c *cli) restoreCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the local database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.embeddedLocation()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			backupFile := args[0]

			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			if exists(loc.DSN) {
				if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := removeDatabase(loc); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}

			if err := repositories.Restore(loc, backupFile); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// embeddedLocation resolves the configured database and rejects those
// that are not files or directories on this machine.
func (c *cli) embeddedLocation() (repositories.Location, error) {
	loc, err := repositories.ParseDatabaseURL(c.config().DatabaseURL)
	if err != nil {
		return loc, err
	}
	if !loc.IsEmbedded() {
		return loc, repositories.ErrBackupUnsupported
	}
	if loc.InMemory() {
		return loc, errors.New("in-memory databases have nothing on disk")
	}
	return loc, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// removeDatabase deletes a badger directory or a sqlite file with its
// journal files.
func removeDatabase(loc repositories.Location) error {
	if loc.Backend == repositories.BackendBadger {
		return os.RemoveAll(loc.DSN)
	}
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(loc.DSN + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}
