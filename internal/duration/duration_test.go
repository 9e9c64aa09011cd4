package duration

import "testing"

func TestParseAndText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"P1W", "P1W"},
		{"P7D", "P1W"},
		{"PT0S", "PT0S"},
		{"PT15M", "PT15M"},
		{"P1DT1H", "P1DT1H"},
		{"-PT30M", "-PT30M"},
		{"+P2D", "P2D"},
	}
	for _, c := range cases {
		d, err := Parse(c.in, ModeRaise)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", c.in, err)
		}
		if got := d.Text(); got != c.want {
			t.Errorf("Parse(%q).Text() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("garbage", ModeRaise); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestWeeksCanonicalisation(t *testing.T) {
	// Exact multiples of a week always round-trip as PnW.
	d := FromSeconds(14 * 86400)
	if d.Text() != "P2W" {
		t.Errorf("FromSeconds(14 days).Text() = %q, want P2W", d.Text())
	}
	d2 := FromSeconds(14*86400 + 1)
	if d2.Weeks != 0 {
		t.Errorf("off-by-one-second week duration must not canonicalise as weeks")
	}
}

func TestTotalSecondsSign(t *testing.T) {
	d, _ := Parse("-PT1H", ModeRaise)
	if d.TotalSeconds() != -3600 {
		t.Errorf("TotalSeconds() = %d, want -3600", d.TotalSeconds())
	}
}
