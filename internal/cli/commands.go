package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
	"github.com/PixelSnake/FuzzySearch/internal/config"
)

func newInitCmd(g *globals) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		Long: `Writes a config file describing a new catalog.

Examples:
  fuzzysearch init --data catalog.log --field brand --field name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.dataPath
			if path == "" {
				path = "catalog.log"
			}
			cfg := config.Default(path, fields...)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTo(g.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", g.configPath)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "fuzzy field name (repeatable)")
	return cmd
}

func newAddCmd(g *globals) *cobra.Command {
	var (
		id     uint64
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Long: `Adds one record to the catalog.

Examples:
  fuzzysearch add --id 1 --field brand=Acme --field "name=Torque Wrench"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item := fuzzysearch.Item{ID: id, Fields: make(map[string]string, len(fields))}
			for _, kv := range fields {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("field %q must be name=value", kv)
				}
				item.Fields[name] = value
			}

			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			if ix.Contains(id) {
				return fmt.Errorf("record %d already exists: %w", id, fuzzysearch.ErrDuplicateID)
			}
			if err := ix.Add(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", id)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "record id")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field value as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newGetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			doc, err := ix.Get(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id: %d\n", doc.ID)
			for _, name := range ix.Fields() {
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(doc.Tokens[name], " "))
			}
			return nil
		},
	}
}

func newFindCmd(g *globals) *cobra.Command {
	var cutoff float64
	cmd := &cobra.Command{
		Use:   "find TEXT...",
		Short: "Search the catalog",
		Long: `Scores every record against the search text and prints matches,
best first.

Examples:
  fuzzysearch find wrnch
  fuzzysearch find cordles drill --cutoff 0.3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			var opts []fuzzysearch.SearchOption
			if cmd.Flags().Changed("cutoff") {
				opts = append(opts, fuzzysearch.SearchWithCutoff(cutoff))
			}
			results, err := ix.Find(cmd.Context(), strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), ix, results)
		},
	}
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "acceptance threshold (distance / term length)")
	return cmd
}

func newQueryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "query QUERY",
		Short: "Run a query",
		Long: `Runs a query in the directive language.

Examples:
  fuzzysearch query 'SEARCH "wrnch" LIMIT 5'
  fuzzysearch query 'SEARCH "drill" MAXDIST 0.3 RETURN brand,name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			results, err := ix.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), ix, results)
		},
	}
}

func newExportCmd(g *globals) *cobra.Command {
	var compression string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a backup of all records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := fuzzysearch.ParseCompression(compression)
			if err != nil {
				return err
			}
			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			w := bufio.NewWriter(f)
			n, err := ix.Export(cmd.Context(), w, c)
			if err == nil {
				err = w.Flush()
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d records\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", "zstd", "none, zstd or lz4")
	return cmd
}

func newImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add all records of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := ix.Import(cmd.Context(), bufio.NewReader(f))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	}
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := g.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			s := ix.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records:    %d\n", s.Records)
			fmt.Fprintf(out, "Data bytes: %d\n", s.DataBytes)
			fmt.Fprintf(out, "Fields:     %s\n", strings.Join(s.Fields, ", "))
			fmt.Fprintf(out, "Format:     %s\n", s.Format)
			fmt.Fprintf(out, "Durability: %s\n", s.Durability)
			return nil
		},
	}
}

// printResults writes one line per result: id, score, the matched tokens in
// brackets and any projected fields.
func printResults(w io.Writer, ix *fuzzysearch.Index[fuzzysearch.Item], results []fuzzysearch.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}
	for _, r := range results {
		doc, err := ix.Get(r.ID)
		if err != nil {
			return err
		}
		var matched []string
		for _, h := range r.Highlights {
			matched = append(matched, fmt.Sprintf("%s:[%s]", h.Field, doc.Tokens[h.Field][h.Token]))
		}
		line := fmt.Sprintf("%d\t%.3f\t%s", r.ID, r.Score, strings.Join(matched, " "))
		for _, name := range ix.Fields() {
			if tokens, ok := r.Fields[name]; ok {
				line += fmt.Sprintf("\t%s=%s", name, strings.Join(tokens, " "))
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
