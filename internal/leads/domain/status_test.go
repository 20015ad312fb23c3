package domain

import "testing"

func TestParse(t *testing.T) {
	for _, raw := range []string{"new", "scored", "outreach_sent", "responded", "converted", "lost"} {
		if _, err := Parse(raw); err != nil {
			t.Fatalf("Parse(%q) returned error: %v", raw, err)
		}
	}

	if _, err := Parse("qualified"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusNew, StatusScored, true},
		{StatusNew, StatusOutreachSent, false},
		{StatusNew, StatusLost, true},
		{StatusScored, StatusScored, true},
		{StatusScored, StatusOutreachSent, true},
		{StatusScored, StatusConverted, false},
		{StatusOutreachSent, StatusOutreachSent, true},
		{StatusOutreachSent, StatusResponded, true},
		{StatusOutreachSent, StatusScored, false},
		{StatusResponded, StatusConverted, true},
		{StatusResponded, StatusNew, false},
		{StatusConverted, StatusLost, false},
		{StatusLost, StatusNew, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusConverted.IsTerminal() {
		t.Error("converted should be terminal")
	}
	if !StatusLost.IsTerminal() {
		t.Error("lost should be terminal")
	}
	if StatusNew.IsTerminal() || StatusScored.IsTerminal() || StatusOutreachSent.IsTerminal() || StatusResponded.IsTerminal() {
		t.Error("active states must not be terminal")
	}
}
