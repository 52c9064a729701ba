// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jsax"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

// recordingSink implements jsax.EventSink, logging each event as one line
// of human-readable text.
type recordingSink struct{ lines []string }

func (r *recordingSink) logf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recordingSink) output() string { return strings.Join(r.lines, "\n") }

func (r *recordingSink) BeginDocument(jsax.Location) { r.logf("BeginDocument") }
func (r *recordingSink) EndDocument(jsax.Location)   { r.logf("EndDocument") }
func (r *recordingSink) BeginObject(jsax.Location)   { r.logf("BeginObject") }
func (r *recordingSink) EndObject(jsax.Location)     { r.logf("EndObject") }
func (r *recordingSink) BeginArray(jsax.Location)     { r.logf("BeginArray") }
func (r *recordingSink) EndArray(jsax.Location)       { r.logf("EndArray") }
func (r *recordingSink) Name(_ jsax.Location, v mem.RO) {
	r.logf("Name %q", v.StringCopy())
}
func (r *recordingSink) StringValue(_ jsax.Location, v mem.RO) {
	r.logf("String %q", v.StringCopy())
}
func (r *recordingSink) IntegerValue(_ jsax.Location, v int64) {
	r.logf("Integer %d", v)
}
func (r *recordingSink) UIntegerValue(_ jsax.Location, v uint64) {
	r.logf("UInteger %d", v)
}
func (r *recordingSink) DoubleValue(_ jsax.Location, v float64, _ uint8) {
	r.logf("Double %v", v)
}
func (r *recordingSink) BoolValue(_ jsax.Location, v bool) { r.logf("Bool %v", v) }
func (r *recordingSink) NullValue(jsax.Location)           { r.logf("Null") }

// recordingHandler is an ErrorHandler that logs each anomaly and always
// continues, so a test can observe both the recovered event stream and
// the anomalies that produced it.
type recordingHandler struct{ codes []jsax.Code }

func (h *recordingHandler) Error(code jsax.Code, _ jsax.Location) jsax.Disposition {
	h.codes = append(h.codes, code)
	return jsax.Continue
}
func (h *recordingHandler) FatalError(code jsax.Code, _ jsax.Location) {
	h.codes = append(h.codes, code)
}

func runAll(t *testing.T, sink jsax.EventSink, errh jsax.ErrorHandler, chunks ...string) error {
	t.Helper()
	p := jsax.NewParser(sink, errh)
	for _, c := range chunks {
		p.SetSource([]byte(c))
		if err := p.Parse(); err != nil {
			return err
		}
	}
	if err := p.EndParse(); err != nil {
		return err
	}
	return p.CheckDone()
}

func TestParserScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ObjectArrayMixed", `{"a":1,"b":[true,null,-2.5e1]}`, strings.Join([]string{
			"BeginDocument", "BeginObject",
			`Name "a"`, "UInteger 1",
			`Name "b"`, "BeginArray",
			"Bool true", "Null", "Double -25",
			"EndArray", "EndObject", "EndDocument",
		}, "\n")},
		{"LeadingWhitespace", "  42 \n", strings.Join([]string{
			"BeginDocument", "UInteger 42", "EndDocument",
		}, "\n")},
		{"EmptyObject", "{}", "BeginDocument\nBeginObject\nEndObject\nEndDocument"},
		{"EmptyArray", "[]", "BeginDocument\nBeginArray\nEndArray\nEndDocument"},
		{"NestedArrays", "[[1],[2,3]]", strings.Join([]string{
			"BeginDocument", "BeginArray",
			"BeginArray", "UInteger 1", "EndArray",
			"BeginArray", "UInteger 2", "UInteger 3", "EndArray",
			"EndArray", "EndDocument",
		}, "\n")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sink := new(recordingSink)
			if err := runAll(t, sink, nil, test.input); err != nil {
				t.Fatalf("Parse(%q): %v", test.input, err)
			}
			if diff := cmp.Diff(test.want, sink.output()); diff != "" {
				t.Errorf("Input %q: output mismatch (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestChunkBoundaryInvariance(t *testing.T) {
	const input = `{"a":1,"b":[true,null,-2.5e1],"s":"héllo"}`

	var reference string
	{
		sink := new(recordingSink)
		if err := runAll(t, sink, nil, input); err != nil {
			t.Fatalf("whole-input parse: %v", err)
		}
		reference = sink.output()
	}

	for cut := 1; cut < len(input); cut++ {
		sink := new(recordingSink)
		if err := runAll(t, sink, nil, input[:cut], input[cut:]); err != nil {
			t.Fatalf("split at %d: %v", cut, err)
		}
		if diff := cmp.Diff(reference, sink.output()); diff != "" {
			t.Errorf("split at %d: output differs from whole-input parse (-want +got):\n%s", cut, diff)
		}
	}
}

func TestStringAcrossChunkBoundary(t *testing.T) {
	sink := new(recordingSink)
	if err := runAll(t, sink, nil, `"\"he`, `llo\""`); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "BeginDocument\nString \"\\\"hello\\\"\"\nEndDocument"
	if diff := cmp.Diff(want, sink.output()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestIntegerBoundaries(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"9223372036854775807", "UInteger 9223372036854775807"},
		{"-9223372036854775808", "Integer -9223372036854775808"},
		{"9223372036854775808", "UInteger 9223372036854775808"},
		{"18446744073709551615", "UInteger 18446744073709551615"},
		{"18446744073709551616", "Double 1.8446744073709552e+19"},
	}
	for _, test := range tests {
		sink := new(recordingSink)
		if err := runAll(t, sink, nil, test.input); err != nil {
			t.Fatalf("Parse(%q): %v", test.input, err)
		}
		got := sink.lines[1]
		if got != test.want {
			t.Errorf("Input %q: got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSurrogatePair(t *testing.T) {
	sink := new(recordingSink)
	const input = "\"\\uD834\\uDD1E\"" // JSON: "𝄞" -> U+1D11E
	if err := runAll(t, sink, nil, input); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "BeginDocument\nString \"\U0001D11E\"\nEndDocument"
	if diff := cmp.Diff(want, sink.output()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestLoneHighSurrogate(t *testing.T) {
	sink := new(recordingSink)
	errh := new(recordingHandler)
	if err := runAll(t, sink, errh, `"\uD834"`); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(errh.codes) == 0 || errh.codes[0] != jsax.ExpectedCodepointSurrogatePair {
		t.Errorf("codes = %v, want first = ExpectedCodepointSurrogatePair", errh.codes)
	}
}

func TestLoneLowSurrogate(t *testing.T) {
	sink := new(recordingSink)
	errh := new(recordingHandler)
	if err := runAll(t, sink, errh, `"\uDD1E"`); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(errh.codes) == 0 || errh.codes[0] != jsax.IllegalCodepoint {
		t.Errorf("codes = %v, want first = IllegalCodepoint", errh.codes)
	}
}

func TestMaxDepthBoundary(t *testing.T) {
	const depth = 8
	ok := strings.Repeat("[", depth) + strings.Repeat("]", depth)
	p := jsax.NewParser(new(recordingSink), nil)
	p.MaxNestingDepth(depth)
	p.SetSource([]byte(ok))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse at exactly max depth: %v", err)
	}
	if err := p.EndParse(); err != nil {
		t.Fatalf("EndParse: %v", err)
	}

	tooDeep := strings.Repeat("[", depth+1) + strings.Repeat("]", depth+1)
	p2 := jsax.NewParser(new(recordingSink), nil)
	p2.MaxNestingDepth(depth)
	p2.SetSource([]byte(tooDeep))
	err := p2.Parse()
	if err == nil {
		t.Fatal("Parse did not report an error for over-depth input")
	}
	perr, ok2 := err.(*jsax.ParseError)
	if !ok2 || perr.Code != jsax.MaxDepthExceeded {
		t.Errorf("error = %v, want MaxDepthExceeded", err)
	}
}

func TestExtraComma(t *testing.T) {
	sink := new(recordingSink)
	errh := new(recordingHandler)
	if err := runAll(t, sink, errh, `[1,2,,3]`); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := strings.Join([]string{
		"BeginDocument", "BeginArray",
		"UInteger 1", "UInteger 2", "UInteger 3",
		"EndArray", "EndDocument",
	}, "\n")
	if diff := cmp.Diff(want, sink.output()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(errh.codes) != 1 || errh.codes[0] != jsax.ExtraComma {
		t.Errorf("codes = %v, want [ExtraComma]", errh.codes)
	}
}

func TestUnexpectedEOF(t *testing.T) {
	p := jsax.NewParser(new(recordingSink), nil)
	p.SetSource([]byte("{"))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err := p.EndParse()
	perr, ok := err.(*jsax.ParseError)
	if !ok || perr.Code != jsax.UnexpectedEOF {
		t.Errorf("EndParse error = %v, want UnexpectedEOF", err)
	}
}

func TestInvalidNumberTrailingGarbage(t *testing.T) {
	sink := new(recordingSink)
	errh := new(recordingHandler)
	if err := runAll(t, sink, errh, "123abc"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "BeginDocument\nUInteger 123\nEndDocument"
	if diff := cmp.Diff(want, sink.output()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(errh.codes) != 1 || errh.codes[0] != jsax.InvalidNumber {
		t.Errorf("codes = %v, want [InvalidNumber]", errh.codes)
	}
}

func TestLineColumnTracking(t *testing.T) {
	p := jsax.NewParser(jsax.NopSink{}, nil)
	p.SetSource([]byte("  42 \n"))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := p.EndParse(); err != nil {
		t.Fatalf("EndParse: %v", err)
	}
	if p.LineNumber() != 2 || p.ColumnNumber() != 1 {
		t.Errorf("line/col = %d/%d, want 2/1", p.LineNumber(), p.ColumnNumber())
	}
}

func TestResetReusesParser(t *testing.T) {
	sink := new(recordingSink)
	p := jsax.NewParser(sink, nil)
	p.SetSource([]byte(`{"a":1}`))
	if err := p.Parse(); err != nil {
		t.Fatalf("first parse: %v", err)
	}
	if err := p.EndParse(); err != nil {
		t.Fatalf("first EndParse: %v", err)
	}
	first := sink.output()

	sink.lines = nil
	p.Reset()
	p.SetSource([]byte(`{"a":1}`))
	if err := p.Parse(); err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if err := p.EndParse(); err != nil {
		t.Fatalf("second EndParse: %v", err)
	}
	second := sink.output()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reset+reparse differs from first parse (-want +got):\n%s", diff)
	}
}

func TestMaxNestingDepthPanics(t *testing.T) {
	p := jsax.NewParser(jsax.NopSink{}, nil)
	mtest.MustPanic(t, func() { p.MaxNestingDepth(0) })
	mtest.MustPanic(t, func() { p.MaxNestingDepth(-1) })
}
