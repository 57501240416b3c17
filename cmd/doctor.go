package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/checkline/checkline-cli/internal/config"
	"github.com/checkline/checkline-cli/internal/index"
	"github.com/checkline/checkline-cli/internal/provider"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment and index health checks",
	Long: `Check that checkline's configuration, provider credentials, and index
artifact are in a servable state. Run this when answers look wrong or before
filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// normTolerance is the allowed deviation from unit L2 norm for stored
// vectors.
const normTolerance = 1e-6

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	fail := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("checkline doctor")

	// ── Config ──────────────────────────────────────────────────────────
	fmt.Println("\n[ config ]")
	cfg, err := config.Load()
	if err != nil {
		fail("cannot load config: %v", err)
		return fmt.Errorf("doctor found problems")
	}
	printOK("", fmt.Sprintf("config loaded (index dir: %s)", cfg.IndexDir))

	// ── Provider credential ─────────────────────────────────────────────
	fmt.Println("\n[ provider ]")
	provCfg, err := provider.LoadConfig()
	if err != nil {
		fail("cannot resolve provider config: %v", err)
	} else if provCfg.APIKey == "" {
		printWarn("", "CHECKLINE_API_KEY is not set — builds and semantic queries will fail")
	} else {
		printOK("", fmt.Sprintf("credential set (embeddings model: %s)", provCfg.EmbeddingModel))
	}

	// ── Index artifact ──────────────────────────────────────────────────
	fmt.Println("\n[ index ]")
	if _, err := os.Stat(cfg.IndexDir); os.IsNotExist(err) {
		printWarn("", fmt.Sprintf("no index at %s — run 'checkline index'", cfg.IndexDir))
	} else {
		idx, err := index.Load(cfg.IndexDir)
		if err != nil {
			fail("index does not load: %v", err)
		} else {
			printOK("", fmt.Sprintf("index loads: %d facts, dim %d, model %s",
				idx.Sidecar.Count, idx.Sidecar.Dim, emptyAsNA(idx.Sidecar.Model)))

			bad := 0
			for i := 0; i < idx.Sidecar.Count; i++ {
				if math.Abs(index.Norm(idx.Vector(i))-1.0) > normTolerance {
					bad++
				}
			}
			if bad > 0 {
				fail("%d vector(s) deviate from unit norm beyond %g", bad, normTolerance)
			} else {
				printOK("", "all stored vectors are unit-normalized")
			}

			if provCfg != nil && provCfg.APIKey != "" && idx.Sidecar.Model != "" &&
				idx.Sidecar.Model != "openai:"+provCfg.EmbeddingModel {
				printWarn("", fmt.Sprintf("index model %s differs from configured %s",
					idx.Sidecar.Model, provCfg.EmbeddingModel))
			}
		}
	}

	fmt.Println()
	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	printOK("", "environment looks healthy")
	return nil
}
