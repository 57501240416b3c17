package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkline/checkline-cli/internal/config"
	"github.com/checkline/checkline-cli/internal/index"
	"github.com/checkline/checkline-cli/internal/resolve"
)

var (
	flagSuggestLast  string
	flagSuggestTypes string
	flagSuggestLimit int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print alternative prompts the index can answer",
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&flagSuggestLast, "last", "", "The failed query to derive hints from")
	suggestCmd.Flags().StringVar(&flagSuggestTypes, "types", "", "Comma-separated preferred check types, in priority order")
	suggestCmd.Flags().IntVar(&flagSuggestLimit, "limit", resolve.DefaultSuggestLimit, "Maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	idx, err := index.NewCache(cfg.IndexDir).Load()
	if err != nil {
		return fmt.Errorf("cannot load index from %s: %w\nRun 'checkline index' first.", cfg.IndexDir, err)
	}

	preferred := cfg.PreferredTypes
	if flagSuggestTypes != "" {
		preferred = nil
		for _, t := range strings.Split(flagSuggestTypes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				preferred = append(preferred, t)
			}
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	resolver := resolve.New(idx, nil, resolve.Options{Location: loc})

	suggestions := resolver.Suggest(resolve.SuggestRequest{
		LastUserText:   flagSuggestLast,
		PreferredTypes: preferred,
		Limit:          flagSuggestLimit,
	})
	if len(suggestions) == 0 {
		printWarn("", "no answerable prompts found in the index")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}
