// Package resolve turns free-text questions into grounded answers over the
// fact index: hint extraction, exact matching, filtered semantic ranking,
// deterministic composition, and suggestions.
package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/checkline/checkline-cli/internal/facts"
)

// QueryHints are the optional structured fields extracted from one query.
// Each field is independently present ("" = absent).
type QueryHints struct {
	RestaurantKey string
	NameSubstring string
	DateISO       string
	CheckType     facts.CheckType
}

var (
	restaurantIDRe = regexp.MustCompile(`(?i)\b(?:restaurant|store|site|branch|location)\s*(?:#|no\.?\s*|number\s*)?(\d+)\b`)
	quotedNameRe   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	bareNameRe     = regexp.MustCompile(`(?i)\brestaurant\s+([A-Za-z][A-Za-z0-9&'\- ]*)`)
	nameStopRe     = regexp.MustCompile(`(?i)\s+(?:on|for|at|from|in|during|last|this)\b.*$`)
	ukDateRe       = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	isoDateRe      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	wordRe         = regexp.MustCompile(`[A-Za-z]+`)
)

// HintParser extracts QueryHints from free text. Relative dates are
// anchored to "now" in a fixed timezone.
type HintParser struct {
	loc *time.Location
	now func() time.Time
}

// NewHintParser returns a parser anchored to loc. A nil loc falls back to
// Europe/London, then UTC.
func NewHintParser(loc *time.Location, now func() time.Time) *HintParser {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("Europe/London")
		if err != nil {
			loc = time.UTC
		}
	}
	if now == nil {
		now = time.Now
	}
	return &HintParser{loc: loc, now: now}
}

// Parse extracts every hint it can from text. Absent fields stay empty.
func (p *HintParser) Parse(text string) QueryHints {
	var h QueryHints
	h.RestaurantKey = parseRestaurantID(text)
	h.NameSubstring = parseNameSubstring(text)
	h.DateISO = p.parseDate(text)
	h.CheckType = parseCheckType(text)
	return h
}

func parseRestaurantID(text string) string {
	m := restaurantIDRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func parseNameSubstring(text string) string {
	if m := quotedNameRe.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return strings.TrimSpace(g)
			}
		}
	}
	m := bareNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := nameStopRe.ReplaceAllString(m[1], "")
	name = strings.TrimSpace(strings.Trim(name, ".,?!"))
	if name == "" {
		return ""
	}
	return name
}

// parseDate tries UK day-first, then ISO, then natural language. First
// successful pattern wins, so ambiguous numeric dates resolve as UK-format
// by construction.
func (p *HintParser) parseDate(text string) string {
	if m := ukDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return formatISO(year, month, day)
		}
	}
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return m[0]
		}
	}
	ref := p.now().In(p.loc)
	if t, err := naturaldate.Parse(text, ref, naturaldate.WithDirection(naturaldate.Past)); err == nil {
		return t.In(p.loc).Format("2006-01-02")
	}
	return ""
}

func formatISO(year, month, day int) string {
	var b strings.Builder
	b.WriteString(pad(year, 4))
	b.WriteByte('-')
	b.WriteString(pad(month, 2))
	b.WriteByte('-')
	b.WriteString(pad(day, 2))
	return b.String()
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// parseCheckType matches a check type. The refrigeration check gets a
// typo-tolerant word pass before the generic alias-table pass, because its
// vocabulary ("fridge", "refrigeration") is the one users misspell most.
func parseCheckType(text string) facts.CheckType {
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		for _, term := range facts.FridgeTerms {
			if isFridgeTypo(word, term) {
				return facts.FridgeTempCheck
			}
		}
	}
	if t, ok := facts.MatchType(text); ok {
		return t
	}
	return ""
}

// isFridgeTypo reports whether word is a misspelling of term: within one
// edit, or a transposition (two edits rearranging the same letters). That
// keeps "firdge" matching without pulling in unrelated near-misses like
// "friday".
func isFridgeTypo(word, term string) bool {
	d := levenshtein.ComputeDistance(word, term)
	if d <= 1 {
		return true
	}
	return d == 2 && sameLetters(word, term)
}

func sameLetters(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var count [26]int
	for i := 0; i < len(a); i++ {
		if c := a[i]; c >= 'a' && c <= 'z' {
			count[c-'a']++
		}
		if c := b[i]; c >= 'a' && c <= 'z' {
			count[c-'a']--
		}
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}
