package value

import (
	"testing"

	"tempical/internal/instant"
)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    instant.Instant
		wantErr bool
	}{
		{"date", "20240310", instant.NewDate(2024, 3, 10), false},
		{"datetime floating", "20240310T013000", instant.New(2024, 3, 10, 1, 30, 0), false},
		{"datetime utc", "20240310T070000Z", instant.New(2024, 3, 10, 7, 0, 0).UTC(), false},
		{"end of day boundary", "20241231T235959", instant.New(2024, 12, 31, 23, 59, 59), false},
		{"bad month", "20241310", instant.Instant{}, true},
		{"bad day", "20240230", instant.Instant{}, true},
		{"missing T", "20240310 013000", instant.Instant{}, true},
		{"short", "2024031", instant.Instant{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInstant(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.StructuralEqual(tt.want) {
				t.Errorf("ParseInstant(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderInstantRoundTrip(t *testing.T) {
	for _, raw := range []string{"20240310", "20240310T013000", "20240310T070000Z"} {
		i, err := ParseInstant(raw)
		if err != nil {
			t.Fatalf("ParseInstant(%q): %v", raw, err)
		}
		if got := RenderInstant(i); got != raw {
			t.Errorf("round trip %q -> %q", raw, got)
		}
	}
}

func TestUnescapeText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ctx     Context
		want    string
		wantErr bool
	}{
		{"newline lower", `a\nb`, Default(), "a\nb", false},
		{"newline upper", `a\Nb`, Default(), "a\nb", false},
		{"backslash", `a\\b`, Default(), `a\b`, false},
		{"comma", `a\,b`, Default(), "a,b", false},
		{"semicolon", `a\;b`, Default(), "a;b", false},
		{"colon raises by default", `a\:b`, Default(), "", true},
		{"colon allowed", `a\:b`, Lenient(), "a:b", false},
		{"unknown raises", `a\xb`, Default(), "", true},
		{"unknown allowed", `a\xb`, Lenient(), "axb", false},
		{"trailing backslash literal", `a\`, Default(), `a\`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnescapeText(tt.input, tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnescapeText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("UnescapeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeTextRoundTrip(t *testing.T) {
	for _, s := range []string{"plain", "a,b;c", "line1\nline2", `back\slash`} {
		esc := EscapeText(s)
		got, err := UnescapeText(esc, Default())
		if err != nil {
			t.Fatalf("UnescapeText(EscapeText(%q)): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q -> %q", s, esc, got)
		}
	}
}

func TestUTCOffset(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"+0500", 5 * 3600, false},
		{"-0430", -(4*3600 + 30*60), false},
		{"+023045", 2*3600 + 30*60 + 45, false},
		{"+05:00", 5 * 3600, false},
		{"-04:30:15", -(4*3600 + 30*60 + 15), false},
		{"0500", 0, true},
		{"+05", 0, true},
		{"+0560", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseUTCOffset(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseUTCOffset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseUTCOffset(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
	if got := RenderUTCOffset(-18000); got != "-0500" {
		t.Errorf("RenderUTCOffset(-18000) = %q", got)
	}
	if got := RenderUTCOffset(2*3600 + 30*60 + 45); got != "+023045" {
		t.Errorf("RenderUTCOffset = %q", got)
	}
}

func TestMultiEscapedComma(t *testing.T) {
	m, err := ParseMulti(KindText, `one,two\,half,three`, Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(m.Values))
	}
	if got := m.Values[1].(*Text).Raw; got != "two,half" {
		t.Errorf("middle value = %q, want %q", got, "two,half")
	}
	if got := m.Text(); got != `one,two\,half,three` {
		t.Errorf("Text() = %q", got)
	}
}

func TestStructuredADR(t *testing.T) {
	v, err := ParseText(KindAdr, `;;123 Main Street;Any Town;CA;91921-1234;`, Default())
	if err != nil {
		t.Fatal(err)
	}
	adr := v.(*Structured)
	if len(adr.Components) != 7 {
		t.Fatalf("ADR components = %d, want 7", len(adr.Components))
	}
	if adr.Components[2][0] != "123 Main Street" {
		t.Errorf("street = %q", adr.Components[2][0])
	}
	if got := adr.Text(); got != `;;123 Main Street;Any Town;CA;91921-1234;` {
		t.Errorf("Text() = %q", got)
	}
}

func TestStructuredADRShortRaises(t *testing.T) {
	if _, err := ParseText(KindAdr, "a;b;c", Default()); err == nil {
		t.Fatal("expected error for short ADR in strict mode")
	}
	v, err := ParseText(KindAdr, "a;b;c", Lenient())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(v.(*Structured).Components); n != 7 {
		t.Errorf("padded components = %d, want 7", n)
	}
}

func TestStructuredN(t *testing.T) {
	v, err := ParseText(KindN, `Public;John;Quinlan;Mr.;Esq.`, Default())
	if err != nil {
		t.Fatal(err)
	}
	n := v.(*Structured)
	if n.Components[0][0] != "Public" || n.Components[3][0] != "Mr." {
		t.Errorf("unexpected components %+v", n.Components)
	}
}

func TestGeo(t *testing.T) {
	v, err := ParseText(KindGeo, "37.386013;-122.082932", Default())
	if err != nil {
		t.Fatal(err)
	}
	g := v.(*Geo)
	if g.Lat != 37.386013 || g.Lon != -122.082932 {
		t.Errorf("geo = %+v", g)
	}
	xml := g.XML()
	if len(xml) != 2 || xml[0].Name != "latitude" || xml[1].Name != "longitude" {
		t.Errorf("xml = %+v", xml)
	}
}

func TestPeriodValueRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"19970101T180000Z/19970102T070000Z",
		"19970101T180000Z/PT5H30M",
	} {
		v, err := ParseText(KindPeriod, raw, Default())
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got := v.Text(); got != raw {
			t.Errorf("period %q round-tripped as %q", raw, got)
		}
	}
}

func TestRecurValue(t *testing.T) {
	v, err := ParseText(KindRecur, "FREQ=MONTHLY;BYDAY=-1FR", Default())
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Text(); got != "FREQ=MONTHLY;BYDAY=-1FR" {
		t.Errorf("Text() = %q", got)
	}
}

func TestBackslashInURIPolicy(t *testing.T) {
	if _, err := ParseText(KindURI, `http://example.com/a\b`, Default()); err == nil {
		t.Fatal("expected strict rejection of backslash in URI")
	}
	if _, err := ParseText(KindURI, `http://example.com/a\b`, Lenient()); err != nil {
		t.Fatalf("lenient parse failed: %v", err)
	}
}
