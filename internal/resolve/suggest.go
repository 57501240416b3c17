package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/checkline/checkline-cli/internal/facts"
)

// DefaultSuggestLimit caps the number of suggested prompts.
const DefaultSuggestLimit = 7

// SuggestRequest asks for alternative prompts after a failed resolution.
type SuggestRequest struct {
	LastUserText   string   `json:"lastUserText,omitempty"`
	PreferredTypes []string `json:"preferredTypes,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

var isoFullRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Suggest builds a deduplicated list of answerable prompts. It narrows by
// any hints in the failed query (falling back to the full corpus), keeps
// only facts with complete metadata, prefers one slot per requested type in
// priority order, and backfills with the most recent facts overall.
func (r *Resolver) Suggest(req SuggestRequest) []string {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	pool := r.fullPool()
	if strings.TrimSpace(req.LastUserText) != "" {
		if narrowed := r.prefilter(r.hints.Parse(req.LastUserText)); len(narrowed) > 0 {
			pool = narrowed
		}
	}

	// Only facts with all of date, type, and restaurant key can become
	// prompts the fast path will answer. Fixed-width ISO dates sort
	// correctly as strings.
	var candidates []facts.Fact
	for _, i := range pool {
		f := r.idx.Sidecar.Items[i]
		if !isoFullRe.MatchString(f.Meta.DateISO) || f.Meta.Type == "" || f.Meta.RestaurantKey == "" {
			continue
		}
		candidates = append(candidates, f)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Meta.DateISO > candidates[j].Meta.DateISO
	})

	var out []string
	seen := make(map[string]struct{})
	add := func(f facts.Fact) bool {
		if len(out) >= limit {
			return false
		}
		p := promptFor(f)
		if _, dup := seen[p]; dup {
			return true
		}
		seen[p] = struct{}{}
		out = append(out, p)
		return true
	}

	// One slot per preferred type, in the caller's priority order.
	for _, want := range req.PreferredTypes {
		t, ok := resolvePreferredType(want)
		if !ok {
			continue
		}
		for _, f := range candidates {
			if f.Meta.Type == string(t) {
				add(f)
				break
			}
		}
	}

	// Backfill with the most recent facts overall.
	for _, f := range candidates {
		if len(out) >= limit {
			break
		}
		add(f)
	}
	return out
}

func resolvePreferredType(s string) (facts.CheckType, bool) {
	s = strings.TrimSpace(s)
	if facts.IsKnownType(s) {
		return facts.CheckType(s), true
	}
	return facts.MatchType(s)
}

// promptFor phrases a prompt the exact-match fast path can answer: it names
// the type, the restaurant key, and a UK-formatted date.
func promptFor(f facts.Fact) string {
	date := f.Meta.DateISO
	if t, err := time.Parse("2006-01-02", date); err == nil {
		date = t.Format("02/01/2006")
	}
	return fmt.Sprintf("%s for restaurant %s on %s",
		facts.Humanize(facts.CheckType(f.Meta.Type)), f.Meta.RestaurantKey, date)
}
