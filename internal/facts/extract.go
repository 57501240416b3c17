package facts

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Row is one record of the build input keyed by header column name.
type Row map[string]string

// ExtractOptions are the build-time filters applied before emission.
type ExtractOptions struct {
	Since string      // ISO lower bound on date_iso, inclusive
	Year  int         // restrict to one calendar year, 0 = all
	Types []CheckType // allow-list, empty = all
}

func (o ExtractOptions) allowsType(t CheckType) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, allowed := range o.Types {
		if allowed == t {
			return true
		}
	}
	return false
}

func (o ExtractOptions) allowsDate(iso string) bool {
	if o.Since != "" {
		if !isISODate(iso) || iso < o.Since {
			return false
		}
	}
	if o.Year != 0 {
		if !strings.HasPrefix(iso, fmt.Sprintf("%04d-", o.Year)) {
			return false
		}
	}
	return true
}

var (
	dmyRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	isoRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func isISODate(s string) bool { return isoRe.MatchString(s) }

// NormalizeDate converts D/M/YYYY or D-M-YYYY to YYYY-MM-DD. Anything it
// cannot parse passes through unchanged; an odd date must not kill a build.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	m := dmyRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return s
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// parseNum parses a numeric cell with "empty or unparsable -> 0" semantics.
func parseNum(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// asPercent accepts ratios given either as fractions (0..1) or as
// percentages (0..100) and returns a percentage.
func asPercent(v float64) float64 {
	if v > 0 && v <= 1.0 {
		return v * 100
	}
	return v
}

// formatPct renders a percentage without a trailing ".0" for whole values.
func formatPct(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FactID returns the deterministic id for a (row, type) pair. Stable and
// collision-free within one build.
func FactID(rowIdx int, t CheckType) string {
	return fmt.Sprintf("r%d-%s", rowIdx, strings.ToLower(string(t)))
}

// ExtractRow converts one tabular row and one target check type into at
// most one fact. The second return is false when the row carries no
// activity for that type or a build filter excludes it.
func ExtractRow(row Row, t CheckType, rowIdx int, opts ExtractOptions) (Fact, bool) {
	if !opts.allowsType(t) {
		return Fact{}, false
	}

	prefix := string(t)
	completion := asPercent(parseNum(row[prefix+"-CompletionRatio"]))
	checks := parseNum(row[prefix+"-NumberOfChecks"])
	completed := parseNum(row[prefix+"-NumberOfCompletedChecks"])
	passed := parseNum(row[prefix+"-NumberOfPassedChecks"])
	passRatio := asPercent(parseNum(row[prefix+"-PassRatio"]))

	// No activity signal at all: nothing to state.
	if checks == 0 && completion == 0 && passRatio == 0 {
		return Fact{}, false
	}

	dateISO := NormalizeDate(row["date"])
	if !opts.allowsDate(dateISO) {
		return Fact{}, false
	}

	key := strings.TrimSpace(row["restaurant_key"])
	name := strings.TrimSpace(row["restaurant_name"])

	text := fmt.Sprintf(
		"%s for restaurant %s (%s) on %s: checks=%d completed=%d passed=%d (comp=%s%%, pass=%s%%)",
		Humanize(t), key, name, dateISO,
		int(checks), int(completed), int(passed),
		formatPct(completion), formatPct(passRatio),
	)

	return Fact{
		ID:   FactID(rowIdx, t),
		Text: text,
		Meta: Meta{
			Type:           string(t),
			RestaurantKey:  key,
			RestaurantName: name,
			DateISO:        dateISO,
		},
	}, true
}

// ExtractAll emits the facts for every check type present in one row.
func ExtractAll(row Row, rowIdx int, opts ExtractOptions) []Fact {
	var out []Fact
	for _, t := range AllCheckTypes {
		if f, ok := ExtractRow(row, t, rowIdx, opts); ok {
			out = append(out, f)
		}
	}
	return out
}

// LoadCSV reads the build input and returns one Row per record. limit > 0
// caps the number of data rows read.
func LoadCSV(path string, limit int) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}

	header := records[0]
	var rows []Row
	for _, rec := range records[1:] {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.TrimSpace(col)] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseTypes parses a comma-separated allow-list of check type keys.
func ParseTypes(s string) ([]CheckType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []CheckType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !IsKnownType(part) {
			return nil, fmt.Errorf("unknown check type %q", part)
		}
		out = append(out, CheckType(part))
	}
	return out, nil
}
