package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/checkline/checkline-cli/internal/config"
	"github.com/checkline/checkline-cli/internal/facts"
	"github.com/checkline/checkline-cli/internal/index"
	"github.com/checkline/checkline-cli/internal/provider"
)

var (
	flagIndexCSV       string
	flagIndexOut       string
	flagIndexSince     string
	flagIndexYear      int
	flagIndexTypes     string
	flagIndexLimit     int
	flagIndexMaxFacts  int
	flagIndexBatchSize int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the fact embedding index from a compliance CSV export",
	Long: `Extract facts from a tabular compliance export, embed them via the
configured provider, and atomically install the index artifact. A failed
build leaves any existing index untouched.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexCSV, "csv", "", "Path to the tabular build input (required)")
	indexCmd.Flags().StringVar(&flagIndexOut, "out", "", "Index output directory (default: config index_dir)")
	indexCmd.Flags().StringVar(&flagIndexSince, "since", "", "Only include facts on or after this ISO date")
	indexCmd.Flags().IntVar(&flagIndexYear, "year", 0, "Restrict to one calendar year")
	indexCmd.Flags().StringVar(&flagIndexTypes, "types", "", "Comma-separated check type allow-list")
	indexCmd.Flags().IntVar(&flagIndexLimit, "limit", 0, "Cap the number of input rows read")
	indexCmd.Flags().IntVar(&flagIndexMaxFacts, "max-facts", 0, "Cap the number of emitted facts")
	indexCmd.Flags().IntVar(&flagIndexBatchSize, "batch-size", index.DefaultBatchSize, "Fact texts per embedding request")
	_ = indexCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	outDir := flagIndexOut
	if outDir == "" {
		outDir = cfg.IndexDir
	}

	// Missing credential is fatal at build time, before any work happens.
	provCfg, err := provider.LoadConfig()
	if err != nil {
		return err
	}
	prov, err := provider.NewFromConfig(provCfg)
	if err != nil {
		return err
	}

	types, err := facts.ParseTypes(flagIndexTypes)
	if err != nil {
		return err
	}

	// One build at a time per config dir; a second build must not interleave
	// an install with ours.
	clDir, err := config.ChecklineDir()
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(clDir, "index.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("cannot acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another index build is already running")
	}
	defer lock.Unlock()

	printSection("checkline index")

	rows, err := facts.LoadCSV(flagIndexCSV, flagIndexLimit)
	if err != nil {
		return err
	}
	printInfo("", fmt.Sprintf("read %d rows from %s", len(rows), flagIndexCSV))

	opts := facts.ExtractOptions{Since: flagIndexSince, Year: flagIndexYear, Types: types}
	var all []facts.Fact
	for i, row := range rows {
		all = append(all, facts.ExtractAll(row, i, opts)...)
	}
	if flagIndexMaxFacts > 0 && len(all) > flagIndexMaxFacts {
		all = all[:flagIndexMaxFacts]
	}
	if len(all) == 0 {
		return fmt.Errorf("no facts extracted from %s (check filters)", flagIndexCSV)
	}
	printInfo("", fmt.Sprintf("extracted %d facts", len(all)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	printInfo("", fmt.Sprintf("embedding with %s", prov.ModelID()))
	idx, err := index.Build(ctx, prov, all, index.BuildOptions{BatchSize: flagIndexBatchSize})
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if err := index.Install(idx, outDir); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	printOK("", fmt.Sprintf("index written: %s (%d facts, dim %d)", outDir, idx.Sidecar.Count, idx.Sidecar.Dim))
	return nil
}
