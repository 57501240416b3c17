package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/checkline/checkline-cli/internal/facts"
	"github.com/checkline/checkline-cli/internal/provider"
)

// factSentenceRe re-parses the canonical fact sentence produced by the
// extractor. The groups are: display type, restaurant key, restaurant name,
// date, checks, completed, passed, completion %, pass %.
var factSentenceRe = regexp.MustCompile(
	`^(.+) for restaurant (\S+) \((.*)\) on (\S+): checks=(\d+) completed=(\d+) passed=(\d+) \(comp=([0-9.]+)%, pass=([0-9.]+)%\)$`)

// ComposeExact renders the deterministic summary for an exact match. When
// the canonical sentence does not parse it falls back to the raw sentence;
// this path never fails the request.
func ComposeExact(f facts.Fact) string {
	return composeExactText(f.Text)
}

func composeExactText(text string) string {
	m := factSentenceRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}

	checks, err1 := strconv.Atoi(m[5])
	completed, err2 := strconv.Atoi(m[6])
	passed, err3 := strconv.Atoi(m[7])
	compPct, err4 := strconv.ParseFloat(m[8], 64)
	passPct, err5 := strconv.ParseFloat(m[9], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return text
	}

	displayType := m[1]
	key := m[2]
	name := m[3]
	date := renderDate(m[4])

	notCompleted := checks - completed
	failed := completed - passed

	where := fmt.Sprintf("restaurant %s", key)
	if name != "" {
		where = fmt.Sprintf("restaurant %s (%s)", key, name)
	}

	summary := fmt.Sprintf(
		"On %s, %s recorded %d %s checks: %d completed and %d passed (completion %s%%, pass rate %s%%).",
		date, where, checks, displayType, completed, passed, m[8], m[9])

	return summary + " " + tierMessage(compPct, passPct, notCompleted, failed)
}

// tierMessage picks the commentary tier by descending specificity.
func tierMessage(compPct, passPct float64, notCompleted, failed int) string {
	switch {
	case compPct >= 100 && passPct >= 100:
		return "Excellent work — every check was completed and every check passed."
	case passPct >= 100:
		return fmt.Sprintf("Every completed check passed, but %d check(s) remain outstanding.", notCompleted)
	case compPct >= 100 && failed > 0:
		return fmt.Sprintf("Good completion, but %d check(s) failed and should be reviewed.", failed)
	case passPct >= 90:
		return "Only minor gaps; a quick follow-up should close them."
	case passPct >= 70:
		return "The pass rate is below target; corrective action is recommended."
	default:
		return "The pass rate is well below standard and needs urgent attention."
	}
}

// renderDate formats an ISO date as ordinal day plus full month name, e.g.
// "20th September 2025". Unparsable input is returned as-is.
func renderDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinalSuffix(t.Day()), t.Month().String(), t.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// semanticInstruction is the contract handed to the language-generation
// collaborator for non-exact matches: answer only from the listed facts.
const semanticInstruction = `You answer questions about restaurant compliance check records.
Use ONLY the facts listed below. Never invent restaurants, dates, counts, or percentages.
Render dates as ordinal day plus full month name (for example "20th September 2025").
Keep all numbers exactly as they appear in the facts.
If the facts do not answer the question, say that no matching record was found.`

// composeSemantic hands the bounded, grounded context to the completion
// provider. The generation itself is outside the core; this method only
// fixes the contract and the evidence list.
func (r *Resolver) composeSemantic(ctx context.Context, query string, ranked []MatchResult) (string, error) {
	if r.prov == nil {
		return "", ErrNoProvider
	}
	var b strings.Builder
	b.WriteString(semanticInstruction)
	b.WriteString("\n\nFacts:\n")
	for i, m := range ranked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Fact.Text)
	}

	answer, err := r.prov.Complete(ctx, b.String(), []provider.Turn{{Role: "user", Content: query}})
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
