// Command tournaments manages tournament brackets and reference data from
// the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AdamBeresnev/tournament-tracker/internal/config"
	"github.com/AdamBeresnev/tournament-tracker/internal/db"
	"github.com/AdamBeresnev/tournament-tracker/internal/importer"
	"github.com/AdamBeresnev/tournament-tracker/internal/service"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	configFile string
	out        io.Writer

	cfg         *config.Config
	db          *sqlx.DB
	tournaments *service.TournamentService
	roster      *service.RosterService
	refs        *store.ReferenceStore
	importer    *importer.Importer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:               "tournaments",
		Short:             "Manage tournament brackets and reference data",
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (YAML)")

	root.AddCommand(
		c.migrateCmd(),
		c.createCmd(),
		c.showCmd(),
		c.listCmd(),
		c.updateCmd(),
		c.winnerCmd(),
		c.importCmd(),
	)
	return root
}

// open loads config, connects and brings the schema up to date before any
// subcommand runs.
func (c *cli) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return err
	}

	c.cfg = cfg
	c.db = database
	c.refs = store.NewReferenceStore(database)
	c.tournaments = service.NewTournamentService(database, store.NewTournamentStore(database))
	c.roster = service.NewRosterService(c.refs)
	c.importer = importer.New(c.refs)
	return nil
}

func (c *cli) close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
