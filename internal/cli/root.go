// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
	"github.com/PixelSnake/FuzzySearch/internal/config"
)

type globals struct {
	configPath string
	dataPath   string
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "fuzzysearch",
		Short: "Fuzzy full-text search over a record catalog",
		Long: `fuzzysearch stores catalog records in an append-only log and answers
typo-tolerant searches over their text fields.

The catalog layout is read from a TOML config file:

  path = "catalog.log"

  [[field]]
  name = "brand"

  [[field]]
  name = "name"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&g.dataPath, "data", "", "data log path (overrides the config)")

	root.AddCommand(
		newInitCmd(g),
		newAddCmd(g),
		newGetCmd(g),
		newFindCmd(g),
		newQueryCmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newStatsCmd(g),
	)
	return root
}

func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.dataPath != "" {
		cfg.Path = g.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.configPath, err)
	}
	return cfg, nil
}

func (g *globals) openIndex() (*fuzzysearch.Index[fuzzysearch.Item], error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return fuzzysearch.Open(cfg.Path, cfg.Schema(), cfg.Options()...)
}
