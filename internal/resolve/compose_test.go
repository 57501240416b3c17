package resolve

import (
	"strings"
	"testing"
)

func TestComposeExact_Summary(t *testing.T) {
	text := "Opening Check for restaurant 74 (Harbour View) on 2025-09-20: checks=13 completed=13 passed=13 (comp=100%, pass=100%)"
	got := composeExactText(text)

	for _, want := range []string{
		"On 20th September 2025",
		"restaurant 74 (Harbour View)",
		"13 Opening Check checks",
		"13 completed and 13 passed",
		"completion 100%, pass rate 100%",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestComposeExact_Tiers(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			"all complete all passed",
			"Opening Check for restaurant 74 (Harbour View) on 2025-09-20: checks=13 completed=13 passed=13 (comp=100%, pass=100%)",
			"Excellent work",
		},
		{
			"outstanding checks but all passed",
			"Closing Check for restaurant 75 (Dockside) on 2025-09-21: checks=8 completed=7 passed=7 (comp=87.5%, pass=100%)",
			"1 check(s) remain outstanding",
		},
		{
			"complete but with failures",
			"Hot Holding Check for restaurant 74 (Harbour View) on 2025-09-19: checks=5 completed=5 passed=4 (comp=100%, pass=80%)",
			"1 check(s) failed and should be reviewed",
		},
		{
			"minor gaps",
			"Opening Check for restaurant 76 () on 2025-09-18: checks=13 completed=12 passed=11 (comp=92.3%, pass=91.7%)",
			"minor gaps",
		},
		{
			"below target",
			"Delivery Check for restaurant 76 () on 2025-09-17: checks=5 completed=4 passed=3 (comp=80%, pass=75%)",
			"corrective action is recommended",
		},
		{
			"well below standard",
			"Cleaning Verification Check for restaurant 76 () on 2025-09-16: checks=5 completed=4 passed=2 (comp=80%, pass=50%)",
			"urgent attention",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := composeExactText(c.text)
			if !strings.Contains(got, c.want) {
				t.Fatalf("expected %q in:\n%s", c.want, got)
			}
		})
	}
}

func TestComposeExact_NonCanonicalFallsBackToRawText(t *testing.T) {
	raw := "an older record with a free-form shape"
	if got := composeExactText(raw); got != raw {
		t.Fatalf("fallback must return the raw sentence, got %q", got)
	}
}

func TestComposeExact_NamelessRestaurant(t *testing.T) {
	text := "Opening Check for restaurant 76 () on 2025-09-18: checks=1 completed=1 passed=1 (comp=100%, pass=100%)"
	got := composeExactText(text)
	if strings.Contains(got, "()") {
		t.Fatalf("empty name must be omitted:\n%s", got)
	}
	if !strings.Contains(got, "restaurant 76 recorded") {
		t.Fatalf("expected key-only phrasing:\n%s", got)
	}
}

func TestRenderDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-09-20", "20th September 2025"},
		{"2025-09-01", "1st September 2025"},
		{"2025-03-02", "2nd March 2025"},
		{"2025-03-03", "3rd March 2025"},
		{"2025-03-11", "11th March 2025"},
		{"2025-03-12", "12th March 2025"},
		{"2025-03-13", "13th March 2025"},
		{"2025-03-21", "21st March 2025"},
		{"2025-03-22", "22nd March 2025"},
		{"not-a-date", "not-a-date"},
	}
	for _, c := range cases {
		if got := renderDate(c.in); got != c.want {
			t.Fatalf("renderDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
