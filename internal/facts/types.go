// Package facts defines the canonical fact model and the extraction of
// facts from tabular compliance exports.
package facts

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CheckType identifies one compliance check column group in the build input.
type CheckType string

// The closed set of check types known at build time. Column names in the
// input are derived from these keys ("Opening_Check-NumberOfChecks", ...).
const (
	OpeningCheck         CheckType = "Opening_Check"
	ClosingCheck         CheckType = "Closing_Check"
	FridgeTempCheck      CheckType = "Fridge_Temperature_Check"
	FreezerTempCheck     CheckType = "Freezer_Temperature_Check"
	HotHoldingCheck      CheckType = "Hot_Holding_Check"
	ProbeCalibration     CheckType = "Probe_Calibration_Check"
	DeliveryCheck        CheckType = "Delivery_Check"
	CleaningVerification CheckType = "Cleaning_Verification_Check"
)

// AllCheckTypes lists every known check type in column order.
var AllCheckTypes = []CheckType{
	OpeningCheck,
	ClosingCheck,
	FridgeTempCheck,
	FreezerTempCheck,
	HotHoldingCheck,
	ProbeCalibration,
	DeliveryCheck,
	CleaningVerification,
}

// typeAliases maps free-text terms to check types. Matching is by
// case-insensitive substring containment, first hit wins. This is the single
// place where query vocabulary is tied to the enumeration.
var typeAliases = []struct {
	Type  CheckType
	Terms []string
}{
	{OpeningCheck, []string{"opening"}},
	{ClosingCheck, []string{"closing", "close of day", "end of day"}},
	{FridgeTempCheck, []string{"fridge", "refrigerat", "chiller", "chill"}},
	{FreezerTempCheck, []string{"freezer", "frozen"}},
	{HotHoldingCheck, []string{"hot holding", "hot-holding", "holding temp"}},
	{ProbeCalibration, []string{"probe", "thermometer"}},
	{DeliveryCheck, []string{"delivery", "deliveries", "goods in"}},
	{CleaningVerification, []string{"cleaning", "sanitis", "sanitiz"}},
}

// FridgeTerms are the vocabulary for the refrigeration check. The resolver
// gives these an extra typo-tolerant pass before the generic alias match.
var FridgeTerms = []string{"fridge", "refrigeration", "refrigerator"}

// MatchType resolves a check type from free text via the alias table.
func MatchType(text string) (CheckType, bool) {
	lower := strings.ToLower(text)
	for _, a := range typeAliases {
		for _, term := range a.Terms {
			if strings.Contains(lower, term) {
				return a.Type, true
			}
		}
	}
	return "", false
}

// IsKnownType reports whether s is one of the enumerated check types.
func IsKnownType(s string) bool {
	for _, t := range AllCheckTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

// Humanize renders a check type key as a display name, e.g.
// "Opening_Check" -> "Opening Check".
func Humanize(t CheckType) string {
	s := strings.ReplaceAll(string(t), "_", " ")
	return titleCaser.String(strings.ToLower(s))
}

// Meta is the structured metadata attached to every fact. It is validated
// once at build time and treated as trusted on every read.
type Meta struct {
	Type           string `json:"type"`
	RestaurantKey  string `json:"restaurant_key"`
	RestaurantName string `json:"restaurant_name"`
	DateISO        string `json:"date_iso"`
}

// Fact is one atomic statement about one check type for one restaurant on
// one date. Immutable once built.
type Fact struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Meta Meta   `json:"meta"`
}

// Validate checks the metadata schema of a built fact.
func Validate(f Fact) error {
	if f.ID == "" {
		return fmt.Errorf("fact has empty id")
	}
	if f.Text == "" {
		return fmt.Errorf("fact %s has empty text", f.ID)
	}
	if !IsKnownType(f.Meta.Type) {
		return fmt.Errorf("fact %s has unknown check type %q", f.ID, f.Meta.Type)
	}
	if f.Meta.RestaurantKey == "" {
		return fmt.Errorf("fact %s has empty restaurant_key", f.ID)
	}
	return nil
}
