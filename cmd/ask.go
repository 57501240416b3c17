package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkline/checkline-cli/internal/config"
	"github.com/checkline/checkline-cli/internal/index"
	"github.com/checkline/checkline-cli/internal/provider"
	"github.com/checkline/checkline-cli/internal/resolve"
)

var flagAskDebug bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question against the fact index",
	Long: `Resolve a natural-language question. Well-formed questions naming a
restaurant, date, and check type are answered deterministically without
calling the embedding provider; everything else falls back to filtered
semantic search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagAskDebug, "debug", false, "Print debug information")
	rootCmd.AddCommand(askCmd)
}

func runAsk(_ *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	idx, err := index.NewCache(cfg.IndexDir).Load()
	if err != nil {
		if errors.Is(err, index.ErrCorrupt) {
			return fmt.Errorf("refusing to serve: %w\nRebuild with 'checkline index'.", err)
		}
		return fmt.Errorf("cannot load index from %s: %w\nRun 'checkline index' first.", cfg.IndexDir, err)
	}

	// The fast path works without a provider, so a missing credential only
	// surfaces when semantic ranking is actually needed.
	var prov provider.Client
	if provCfg, cfgErr := provider.LoadConfig(); cfgErr == nil {
		if p, provErr := provider.NewFromConfig(provCfg); provErr == nil {
			if p.ModelID() != idx.Sidecar.Model && idx.Sidecar.Model != "" {
				printWarn("", fmt.Sprintf("index built with %s, provider is %s", idx.Sidecar.Model, p.ModelID()))
			}
			prov = p
		} else if flagAskDebug {
			printInfo("", fmt.Sprintf("provider unavailable: %v", provErr))
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	resolver := resolve.New(idx, prov, resolve.Options{
		TopK:     cfg.TopK,
		MinScore: cfg.MinScore,
		Location: loc,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := resolver.Resolve(ctx, []resolve.Message{{Role: "user", Content: query}})
	if err != nil {
		if errors.Is(err, resolve.ErrEmptyQuery) {
			return fmt.Errorf("empty question: %w", err)
		}
		return err
	}

	fmt.Printf("\n%s\n", res.Answer)
	if flagAskDebug {
		printInfo("", fmt.Sprintf("evidence: %v", res.Used))
		printInfo("", fmt.Sprintf("candidates considered: %d", res.NarrowedCount))
	}

	if len(res.Used) == 0 {
		fmt.Println("\nTry one of:")
		for _, s := range resolver.Suggest(resolve.SuggestRequest{
			LastUserText:   query,
			PreferredTypes: cfg.PreferredTypes,
		}) {
			fmt.Printf("  - %s\n", s)
		}
	}
	return nil
}
