// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

// A Location reports a 1-based line and column within the input, and the
// byte offset of the current read cursor. CR, LF, and CRLF all count as a
// single line break; columns reset to 1 after each.
//
// A Location is a narrow capability: the sink and error handler receive
// one so they can report position without being able to mutate parser
// internals.
type Location struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset from the start of the document
}

// tracker maintains the running line/column/offset as bytes are consumed.
// It is embedded directly in Parser rather than boxed, so its address is
// stable for the lifetime of the parser.
type tracker struct {
	line, col, offset int
}

func newTracker() tracker { return tracker{line: 1, col: 1} }

func (t *tracker) loc() Location {
	return Location{Line: t.line, Column: t.col, Offset: t.offset}
}

// advance accounts for one consumed byte that is not itself part of a
// line break. Call newline instead when the byte is a CR or LF.
func (t *tracker) advance() {
	t.col++
	t.offset++
}

// newline accounts for one consumed line-break byte (CR or LF). CRLF is
// handled by the caller invoking newline once for the CR and treating the
// following LF as a plain consumed byte (see parser.go's cr/lf states).
func (t *tracker) newline() {
	t.line++
	t.col = 1
	t.offset++
}
