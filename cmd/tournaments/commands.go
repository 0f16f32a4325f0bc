package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/importer"
	"github.com/AdamBeresnev/tournament-tracker/internal/service"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Migrations already ran in open.
			fmt.Fprintf(c.out, "database %s is up to date\n", c.cfg.DatabasePath)
			return nil
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var (
		in         service.CreateInput
		dataFile   string
		rosterFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tournament",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.Validate(); err != nil {
				return err
			}

			switch {
			case dataFile != "" && rosterFile != "":
				return fmt.Errorf("--data and --roster cannot be combined")
			case dataFile != "":
				doc, err := readDocument(dataFile)
				if err != nil {
					return err
				}
				in.Data = doc
			case rosterFile != "":
				raw, err := os.ReadFile(rosterFile)
				if err != nil {
					return err
				}
				teams, err := c.roster.ParseRoster(cmd.Context(), in.League, string(raw))
				if err != nil {
					return err
				}
				in.Data = bracket.Document{Teams: teams}
			default:
				in.Data = bracket.NewDocument()
			}

			id, err := c.tournaments.CreateTournament(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "tournament name")
	cmd.Flags().StringVar(&in.Description, "description", "", "free text description")
	cmd.Flags().StringVar(&in.Type, "type", bracket.SingleElimination, "bracket format")
	cmd.Flags().StringVar(&in.League, "league", "", "league or sport")
	cmd.Flags().StringVar(&dataFile, "data", "", "bracket document JSON file")
	cmd.Flags().StringVar(&rosterFile, "roster", "", "file with one team per line")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("league")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a tournament as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			t, err := c.tournaments.LoadTournament(cmd.Context(), id)
			if err != nil {
				if service.IsCorrupt(err) {
					return fmt.Errorf("tournament %d is stored but unreadable: %w", id, err)
				}
				return err
			}

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tournaments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := c.tournaments.ListTournaments(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(c.out, "No tournaments found")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLEAGUE\tTYPE\tSTATUS")
			for _, s := range summaries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.League, s.Type, s.Status)
			}
			return w.Flush()
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	var (
		dataFile string
		status   string
		revision int64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a tournament's bracket document and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := readDocument(dataFile)
			if err != nil {
				return err
			}

			var t *bracket.Tournament
			if revision > 0 {
				t, err = c.tournaments.UpdateTournamentIfRevision(cmd.Context(), id, revision, doc, bracket.Status(status))
			} else {
				t, err = c.tournaments.UpdateTournament(cmd.Context(), id, doc, bracket.Status(status))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "tournament %d is %s at revision %d\n", t.ID, t.Status, t.Revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "bracket document JSON file")
	cmd.Flags().StringVar(&status, "status", "", "new status (created, in_progress, finished)")
	cmd.Flags().Int64Var(&revision, "revision", 0, "fail unless the stored revision matches")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("status")
	return cmd
}

func (c *cli) winnerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "winner <id> <match_id> <team_id>",
		Short: "Record the winner of a match",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			matchID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid match id %q", args[1])
			}

			t, err := c.tournaments.RecordMatchWinner(cmd.Context(), id, matchID, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "match %d won by %s; tournament %d at revision %d\n", matchID, args[2], t.ID, t.Revision)
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <file>",
		Short: "Append rows from a .csv or .xlsx file to Teams or Ballparks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, path := args[0], args[1]

			ds, err := importer.ReadFile(path)
			if err != nil {
				return err
			}
			record, err := c.importer.Import(cmd.Context(), table, ds, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "imported %d rows into %s (%s)\n", record.RowCount, record.Table, record.ID)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tournament id %q", s)
	}
	return id, nil
}

func readDocument(path string) (bracket.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bracket.Document{}, err
	}
	doc, err := bracket.DecodeDocument(raw)
	if err != nil {
		return bracket.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
