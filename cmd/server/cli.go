package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aethra/acueducto/internal/auth"
	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/database"
	"github.com/aethra/acueducto/internal/engine"
	"github.com/spf13/cobra"
)

func migrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema of the sql backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Backend.Kind != config.BackendSQL {
				return stderrors.New("migrate only applies to backend.kind=sql")
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations complete")
			return nil
		},
	}
}

type listOptions struct {
	search   string
	filter   string
	sort     string
	desc     bool
	page     int
	pageSize int
}

func listCommand(load configLoader) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:       "list <dataset>",
		Short:     "Print one page of an enriched dataset",
		Long:      "Print one page of usuarios, predios, matriculas, facturas or solicitudes after search, filter and sort.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := engine.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown dataset %q (one of %s)", args[0], strings.Join(kindNames(), ", "))
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			size := opts.pageSize
			if size == 0 {
				size = cfg.Dashboard.DefaultPageSize
			}
			loader := engine.NewLoader(st, engine.NewFormatter(cfg.Dashboard.PhoneRegion), nil)
			session := engine.NewSession(loader, kind, size)
			if err := session.Select(cmd.Context(), kind); err != nil {
				return err
			}

			dir := engine.SortAsc
			if opts.desc {
				dir = engine.SortDesc
			}
			session.Update(func(s engine.ViewState) engine.ViewState {
				return s.WithSearch(opts.search).
					WithFilter(opts.filter).
					WithSort(opts.sort, dir).
					WithPage(opts.page)
			})
			return printView(cmd.OutOrStdout(), session.Render())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "case-insensitive search text")
	f.StringVarP(&opts.filter, "filter", "f", "", "status filter (todos, pendientes, vencidas, activas...)")
	f.StringVar(&opts.sort, "sort", "", "column key to sort by")
	f.BoolVar(&opts.desc, "desc", false, "sort descending")
	f.IntVarP(&opts.page, "page", "p", 1, "page number")
	f.IntVar(&opts.pageSize, "page-size", 0, "rows per page (default from config)")
	return cmd
}

func kindNames() []string {
	names := make([]string, 0, len(engine.Kinds()))
	for _, k := range engine.Kinds() {
		names = append(names, string(k))
	}
	return names
}

// printView writes the rendered cells as an aligned table with a page footer
func printView(w io.Writer, v engine.View) error {
	if v.Error {
		return stderrors.New(v.Message)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	labels := make([]string, len(v.Columns))
	for i, col := range v.Columns {
		labels[i] = col.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	for _, rec := range v.Rows {
		texts := make([]string, len(rec.Cells))
		for i, cell := range rec.Cells {
			texts[i] = cell.Text
		}
		fmt.Fprintln(tw, strings.Join(texts, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s: página %d de %d (%d registros)\n", v.Title, v.Page, v.TotalPages, v.TotalRows)
	return err
}

func statsCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print invoice totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			f := engine.NewFormatter(cfg.Dashboard.PhoneRegion)
			stats, err := engine.NewLoader(st, f, nil).InvoiceStats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total facturas: %d\n", stats.Total)
			fmt.Fprintf(out, "Pendientes:     %d\n", stats.Pendientes)
			fmt.Fprintf(out, "Vencidas:       %d\n", stats.Vencidas)
			fmt.Fprintf(out, "Deuda total:    %s\n", f.Currency(engine.Number(stats.TotalDeuda)))
			return nil
		},
	}
}

func hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.admin_password_hash",
		Long:  "Print a bcrypt hash for auth.admin_password_hash. The password is read from stdin when not given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !stderrors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return stderrors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
