package facts

import "testing"

func TestHumanize(t *testing.T) {
	if got := Humanize(OpeningCheck); got != "Opening Check" {
		t.Fatalf("Humanize mismatch: %q", got)
	}
	if got := Humanize(FridgeTempCheck); got != "Fridge Temperature Check" {
		t.Fatalf("Humanize mismatch: %q", got)
	}
}

func TestMatchType(t *testing.T) {
	cases := []struct {
		in   string
		want CheckType
		ok   bool
	}{
		{"show me the opening check", OpeningCheck, true},
		{"refrigeration results please", FridgeTempCheck, true},
		{"freezer temps last week", FreezerTempCheck, true},
		{"hot holding for site 3", HotHoldingCheck, true},
		{"anything about deliveries", DeliveryCheck, true},
		{"how is the weather", "", false},
	}
	for _, c := range cases {
		got, ok := MatchType(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("MatchType(%q) = %q,%v, want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestValidate(t *testing.T) {
	good := Fact{
		ID:   "r0-opening_check",
		Text: "Opening Check for restaurant 74 () on 2025-09-20: checks=1 completed=1 passed=1 (comp=100%, pass=100%)",
		Meta: Meta{Type: "Opening_Check", RestaurantKey: "74", DateISO: "2025-09-20"},
	}
	if err := Validate(good); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := good
	bad.Meta.Type = "Mystery_Check"
	if err := Validate(bad); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	bad = good
	bad.Meta.RestaurantKey = ""
	if err := Validate(bad); err == nil {
		t.Fatalf("expected error for empty restaurant key")
	}
}
