package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/checkline/checkline-cli/internal/facts"
	"github.com/checkline/checkline-cli/internal/index"
	"github.com/checkline/checkline-cli/internal/provider"
)

// ErrEmptyQuery indicates a malformed or empty request body. It is a
// client-side rejection and is never retried.
var ErrEmptyQuery = errors.New("request contains no user query")

// ErrNoProvider indicates the resolver needs the embedding provider but
// none is configured. A server-side condition for the request.
var ErrNoProvider = errors.New("no embedding provider configured")

// Message is one role-tagged conversation turn. Only the final user turn
// drives retrieval.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Resolution is the grounded answer for one request.
type Resolution struct {
	Answer        string   `json:"answer"`
	Used          []string `json:"used"`
	NarrowedCount int      `json:"narrowedCount"`
}

// MatchResult pairs a fact with its similarity score. Ephemeral, one
// request only.
type MatchResult struct {
	Fact  facts.Fact
	Score float64
}

const (
	// DefaultTopK bounds the context handed to the composer.
	DefaultTopK = 12
	// DefaultMinScore is the relevance floor below which semantic results
	// are discarded.
	DefaultMinScore = 0.30

	normEpsilon = 1e-9

	noMatchAnswer = "No matching compliance record was found for that question."
)

// Options tune a Resolver.
type Options struct {
	TopK     int
	MinScore float64
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

// Resolver answers questions against one immutable loaded index. Stateless
// apart from that shared index: concurrent requests need no coordination.
type Resolver struct {
	idx      *index.Index
	prov     provider.Client // may be nil: the fast path never embeds
	hints    *HintParser
	topK     int
	minScore float64
	log      *slog.Logger
}

// New constructs a Resolver over a loaded index. prov may be nil, in which
// case only the exact-match fast path and suggestions are available.
func New(idx *index.Index, prov provider.Client, opts Options) *Resolver {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		idx:      idx,
		prov:     prov,
		hints:    NewHintParser(opts.Location, opts.Now),
		topK:     topK,
		minScore: minScore,
		log:      log,
	}
}

// Resolve runs the staged pipeline: hint extraction, exact-match fast path,
// prefilter, semantic ranking, terminal no-match.
func (r *Resolver) Resolve(ctx context.Context, msgs []Message) (*Resolution, error) {
	query := lastUserTurn(msgs)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	h := r.hints.Parse(query)
	r.log.Debug("extracted hints",
		"restaurant_key", h.RestaurantKey,
		"name", h.NameSubstring,
		"date", h.DateISO,
		"type", string(h.CheckType))

	// S1: with restaurant, date, and type all present the answer is
	// deterministic and the embedding provider is never called.
	if h.RestaurantKey != "" && h.DateISO != "" && h.CheckType != "" {
		if f, ok := r.exactMatch(h); ok {
			return &Resolution{
				Answer:        ComposeExact(f),
				Used:          []string{f.ID},
				NarrowedCount: 1,
			}, nil
		}
	}

	// S2: narrow by every present hint with AND semantics; an empty result
	// falls back to the full corpus, never to partial filter combinations.
	pool := r.prefilter(h)
	narrowed := len(pool)
	if narrowed == 0 {
		pool = r.fullPool()
		narrowed = len(pool)
	}

	// S3: semantic ranking over the candidate pool.
	ranked, err := r.rank(ctx, query, pool)
	if err != nil {
		return nil, err
	}

	// S4: zero ranked results is an explicit no-match, never an
	// empty-looking success.
	if len(ranked) == 0 {
		return &Resolution{Answer: noMatchAnswer, Used: []string{}, NarrowedCount: narrowed}, nil
	}

	answer, err := r.composeSemantic(ctx, query, ranked)
	if err != nil {
		return nil, err
	}
	used := make([]string, len(ranked))
	for i, m := range ranked {
		used[i] = m.Fact.ID
	}
	return &Resolution{Answer: answer, Used: used, NarrowedCount: narrowed}, nil
}

func lastUserTurn(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if strings.EqualFold(msgs[i].Role, "user") {
			return strings.TrimSpace(msgs[i].Content)
		}
	}
	return ""
}

func (r *Resolver) exactMatch(h QueryHints) (facts.Fact, bool) {
	for _, f := range r.idx.Sidecar.Items {
		if f.Meta.RestaurantKey == h.RestaurantKey &&
			strings.HasPrefix(f.Meta.DateISO, h.DateISO) &&
			f.Meta.Type == string(h.CheckType) {
			return f, true
		}
	}
	return facts.Fact{}, false
}

// prefilter applies each present hint independently, AND-combined:
// restaurant id, then name substring when the id is absent, then date
// prefix, then type. Returns corpus positions in original order.
func (r *Resolver) prefilter(h QueryHints) []int {
	var out []int
	nameLower := strings.ToLower(h.NameSubstring)
	for i, f := range r.idx.Sidecar.Items {
		if h.RestaurantKey != "" {
			if f.Meta.RestaurantKey != h.RestaurantKey {
				continue
			}
		} else if nameLower != "" {
			if !strings.Contains(strings.ToLower(f.Meta.RestaurantName), nameLower) {
				continue
			}
		}
		if h.DateISO != "" && !strings.HasPrefix(f.Meta.DateISO, h.DateISO) {
			continue
		}
		if h.CheckType != "" && f.Meta.Type != string(h.CheckType) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (r *Resolver) fullPool() []int {
	out := make([]int, len(r.idx.Sidecar.Items))
	for i := range out {
		out[i] = i
	}
	return out
}

// rank embeds the query and scores every candidate as
// dot(query, unit_vector) / (‖query‖ + ε). Stored vectors are unit-length,
// so this is cosine similarity without per-candidate norms. Ties keep
// original corpus order.
func (r *Resolver) rank(ctx context.Context, query string, pool []int) ([]MatchResult, error) {
	if r.prov == nil {
		return nil, ErrNoProvider
	}
	qv, err := r.prov.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	if len(qv) != r.idx.Sidecar.Dim {
		return nil, fmt.Errorf("query embedding dim mismatch: got %d want %d", len(qv), r.idx.Sidecar.Dim)
	}
	qnorm := index.Norm(qv)

	results := make([]MatchResult, 0, len(pool))
	for _, i := range pool {
		dot, err := index.Dot(qv, r.idx.Vector(i))
		if err != nil {
			return nil, err
		}
		score := dot / (qnorm + normEpsilon)
		if score < r.minScore {
			continue
		}
		results = append(results, MatchResult{Fact: r.idx.Sidecar.Items[i], Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}
