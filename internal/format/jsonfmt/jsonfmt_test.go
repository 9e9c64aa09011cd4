package jsonfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"tempical/internal/format/text"
	"tempical/internal/value"
)

const sampleCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:1@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;TZID=America/New_York:20240310T013000\r\n" +
	"DURATION:PT1H\r\n" +
	"RRULE:FREQ=DAILY;COUNT=3\r\n" +
	"CATEGORIES:WORK,PLANNING\r\n" +
	"PRIORITY:5\r\n" +
	"SUMMARY:Morning sync\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestEmitShape(t *testing.T) {
	cal, err := text.ParseString(sampleCalendar, value.Default())
	if err != nil {
		t.Fatal(err)
	}
	out, err := Emit(cal)
	if err != nil {
		t.Fatal(err)
	}

	var root []interface{}
	if err := json.Unmarshal([]byte(out), &root); err != nil {
		t.Fatalf("emitted JSON does not parse: %v", err)
	}
	if root[0] != "vcalendar" {
		t.Errorf("type = %v", root[0])
	}
	comps := root[2].([]interface{})
	event := comps[0].([]interface{})
	if event[0] != "vevent" {
		t.Errorf("sub type = %v", event[0])
	}

	// Durations travel as their canonical ISO text form.
	if !strings.Contains(out, `"PT1H"`) {
		t.Errorf("duration missing from:\n%s", out)
	}
	// Multi-valued properties expand into trailing elements.
	if !strings.Contains(out, `"categories",`) || !strings.Contains(out, `"WORK","PLANNING"`) {
		t.Errorf("categories not expanded:\n%s", out)
	}
	// Integers stay numbers.
	if !strings.Contains(out, `"priority",{},"integer",5`) {
		t.Errorf("priority not numeric:\n%s", out)
	}
}

func TestJSONRoundTripEquivalence(t *testing.T) {
	fromText, err := text.ParseString(sampleCalendar, value.Default())
	if err != nil {
		t.Fatal(err)
	}
	jsonOut, err := Emit(fromText)
	if err != nil {
		t.Fatal(err)
	}
	fromJSON, err := ParseString(jsonOut, value.Default())
	if err != nil {
		t.Fatal(err)
	}
	if !fromText.Equal(fromJSON) {
		t.Errorf("JSON round trip changed the tree:\ntext: %s\njson reparse: %s",
			text.Emit(fromText), text.Emit(fromJSON))
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{
		"{}", `"string"`, "[1,2]", `["vcalendar", [], "nope"]`, "not json",
	} {
		if _, err := ParseString(input, value.Default()); err == nil {
			t.Errorf("no error for %q", input)
		}
	}
}
