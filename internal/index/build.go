package index

import (
	"context"
	"fmt"
	"time"

	"github.com/checkline/checkline-cli/internal/facts"
	"github.com/checkline/checkline-cli/internal/provider"
)

// DefaultBatchSize is the number of fact texts sent per embedding call.
const DefaultBatchSize = 100

const (
	maxRetries          = 5
	baseBackoff         = 500 * time.Millisecond
	rateLimitMultiplier = 4
)

// sleep is swapped out in tests.
var sleep = time.Sleep

// BuildOptions controls index building.
type BuildOptions struct {
	BatchSize int // 0 = DefaultBatchSize
}

// Build embeds the given facts and assembles an in-memory index. Fact texts
// are deduplicated before embedding; metadata is validated here, once, so
// readers never re-validate. Batches run strictly sequentially, one network
// round-trip in flight at a time. Exhausting retries aborts the whole
// build: a half-built index must never become visible.
func Build(ctx context.Context, prov provider.Client, fs []facts.Fact, opts BuildOptions) (*Index, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("no facts to index")
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// Validate once, dedupe by text preserving corpus order.
	seen := make(map[string]struct{}, len(fs))
	items := make([]facts.Fact, 0, len(fs))
	for _, f := range fs {
		if err := facts.Validate(f); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Text]; dup {
			continue
		}
		seen[f.Text] = struct{}{}
		items = append(items, f)
	}

	var (
		vectors []float32
		dim     int
	)

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		texts := make([]string, 0, end-start)
		for _, f := range items[start:end] {
			texts = append(texts, f.Text)
		}

		batch, err := embedWithRetry(ctx, prov, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end-1, err)
		}

		for i, v := range batch {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) != dim {
				return nil, fmt.Errorf("embedding dim changed mid-run at item %d: got %d want %d", start+i, len(v), dim)
			}
			vectors = append(vectors, NormalizeL2(v)...)
		}
	}

	sc := Sidecar{
		Dim:       dim,
		Count:     len(items),
		Model:     prov.ModelID(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Items:     items,
	}
	return &Index{Sidecar: sc, Vectors: vectors}, nil
}

// embedWithRetry calls the provider with bounded retries and exponential
// backoff. Rate-limit-class failures wait longer than generic failures.
func embedWithRetry(ctx context.Context, prov provider.Client, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseBackoff << (attempt - 1)
			if provider.IsRateLimited(lastErr) {
				delay *= rateLimitMultiplier
			}
			sleep(delay)
		}
		vecs, err := prov.EmbedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}
