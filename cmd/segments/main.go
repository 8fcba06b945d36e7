// cmd/segments/main.go
//
// Operator tool for the `route_segment` table.
//
// Usage
// -----
//
//	segments list
//	segments upsert blog ro jurnal
//	segments seed            # copies i18n.segments from conf/global.yaml
//	segments init-schema     # creates the storefront tables
//
// The DSN comes from --dsn, else database.dsn in the loaded config.  A
// missing DSN is an error: the tool never falls back to a default database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/database"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/routing"
)

var errNoDSN = errors.New("no DSN: pass --dsn or set database.dsn (STOREFRONT_DATABASE__DSN)")

// opener connects to the database; tests swap in sqlmock.
type opener func(ctx context.Context, dsn string) (*sqlx.DB, error)

func openOne(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return database.OpenWithOptions(ctx, dsn, 1, 1)
}

func main() {
	if err := newRootCmd(config.Load, openOne).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "segments:", err)
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() (*config.Config, error), open opener) *cobra.Command {
	var dsn string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "segments",
		Short:         "Manage localized route segments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "MySQL DSN (overrides database.dsn)")

	// connect resolves config and the DSN, then opens one connection.
	connect := func(cmd *cobra.Command) (*sqlx.DB, error) {
		var err error
		if cfg, err = loadConfig(); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if dsn == "" {
			dsn = cfg.Database.DSN
		}
		if dsn == "" {
			return nil, errNoDSN
		}
		return open(cmd.Context(), dsn)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every route_segment row",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := connect(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				rows, err := routing.List(cmd.Context(), db)
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), rows)
			},
		},
		&cobra.Command{
			Use:   "upsert <canonical> <locale> <localized>",
			Short: "Insert or replace one localized segment",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := connect(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				row := routing.SegmentRow{Canonical: args[0], Locale: args[1], Localized: args[2]}
				if err := checkRow(cfg, row); err != nil {
					return err
				}
				if err := routing.Upsert(cmd.Context(), db, row); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s → %s\n", row.Canonical, row.Locale, row.Localized)
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Upsert the static segment table from config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := connect(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				n := 0
				for _, row := range staticRows(cfg.I18n.Segments) {
					if err := routing.Upsert(cmd.Context(), db, row); err != nil {
						return fmt.Errorf("seed %s/%s: %w", row.Canonical, row.Locale, err)
					}
					n++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init-schema",
			Short: "Create the catalog and route_segment tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := connect(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				return database.EnsureSchema(cmd.Context(), db)
			},
		},
	)
	return root
}

// checkRow rejects unknown locales and slugs that would not survive a URL.
func checkRow(cfg *config.Config, row routing.SegmentRow) error {
	if !slices.Contains(cfg.I18n.Locales, row.Locale) {
		return fmt.Errorf("unsupported locale %q (have %v)", row.Locale, cfg.I18n.Locales)
	}
	if row.Canonical == "" || row.Localized != i18n.Slug(row.Localized) {
		return fmt.Errorf("localized segment %q is not a slug (try %q)", row.Localized, i18n.Slug(row.Localized))
	}
	return nil
}

// staticRows flattens the config table in a stable order.
func staticRows(table map[string]map[string]string) []routing.SegmentRow {
	var rows []routing.SegmentRow
	for _, canonical := range slices.Sorted(maps.Keys(table)) {
		for _, locale := range slices.Sorted(maps.Keys(table[canonical])) {
			rows = append(rows, routing.SegmentRow{
				Canonical: canonical,
				Locale:    locale,
				Localized: table[canonical][locale],
			})
		}
	}
	return rows
}

func printRows(w io.Writer, rows []routing.SegmentRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CANONICAL\tLOCALE\tLOCALIZED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Canonical, r.Locale, r.Localized)
	}
	return tw.Flush()
}
