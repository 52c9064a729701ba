// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"fmt"

	"go4.org/mem"
)

// Parser is a single-threaded, resumable JSON lexer/validator. It is not
// copyable or movable: callers hold it by pointer for its entire
// lifetime.
type Parser struct {
	state state
	stack *stateStack

	buf       []byte // string/digit buffer, reused for both purposes
	runStart  int    // start of the unflushed verbatim run within cur
	sawEscape bool   // true once the current string has diverged into buf

	cp, cp2    rune // codepoint assembler pair for \uXXXX escapes
	isNegative bool
	precision  uint8

	tr tracker

	maxDepth int

	cur []byte
	pos int

	sink EventSink
	errh ErrorHandler

	started bool // BeginDocument has fired
	err     *ParseError
}

// NewParser constructs a Parser that delivers events to sink and routes
// anomalies through errh. A nil sink discards all events; a nil errh
// stops on the first anomaly (StopOnError).
func NewParser(sink EventSink, errh ErrorHandler) *Parser {
	if sink == nil {
		sink = NopSink{}
	}
	if errh == nil {
		errh = StopOnError{}
	}
	p := &Parser{sink: sink, errh: errh, maxDepth: 512}
	p.Reset()
	return p
}

// Reset reinitializes the parser to accept a new document using the same
// sink and error handler.
func (p *Parser) Reset() {
	p.state = stStart
	p.stack = newStateStack()
	p.buf = p.buf[:0]
	p.runStart = 0
	p.sawEscape = false
	p.cp, p.cp2 = 0, 0
	p.isNegative = false
	p.precision = 0
	p.tr = newTracker()
	p.cur = nil
	p.pos = 0
	p.started = false
	p.err = nil
}

// MaxNestingDepth sets the maximum number of nested objects/arrays the
// parser will accept before raising MaxDepthExceeded. The default is 512.
func (p *Parser) MaxNestingDepth(n int) {
	if n <= 0 {
		panic("jsax: max nesting depth must be positive")
	}
	p.maxDepth = n
}

// SetSource installs the next slice of input. The slice is borrowed for
// the duration of subsequent Parse calls; the caller must not mutate it
// until the next slice has been installed, because SetSource copies the
// unflushed tail of a string run out of the previous slice.
func (p *Parser) SetSource(data []byte) {
	if p.state == stStringU1 && p.runStart < len(p.cur) {
		// A string's verbatim run was interrupted by the end of the
		// previous slice; commit what remains so the new slice starts
		// clean, so a document can be resumed across arbitrary chunk
		// boundaries even mid-string.
		rest := p.cur[p.runStart:]
		if r := validateUTF8(rest); r != utf8OK {
			p.raiseRecoverable(r.toCode()) // best effort: no call site to act on Stop here
		}
		p.buf = append(p.buf, rest...)
		p.sawEscape = true
	}
	p.cur = data
	p.pos = 0
	p.runStart = 0
}

// SourceExhausted reports whether the installed source has been fully
// consumed.
func (p *Parser) SourceExhausted() bool { return p.pos >= len(p.cur) }

// LineNumber returns the 1-based line of the parser's current position.
func (p *Parser) LineNumber() int { return p.tr.line }

// ColumnNumber returns the 1-based column of the parser's current
// position.
func (p *Parser) ColumnNumber() int { return p.tr.col }

// State returns the name of the parser's current internal state, for
// diagnostics.
func (p *Parser) State() string { return p.state.String() }

func (p *Parser) loc() Location { return p.tr.loc() }

// advanceByte consumes exactly one byte of input and counts it as one
// column. Line breaks in structural whitespace and raw line breaks kept
// inside a string go through the cr/lf states instead, and block comments
// count their line breaks in stepSlashStar.
func (p *Parser) advanceByte() {
	p.pos++
	p.tr.advance()
}

// ensureBeginDocument fires EventSink.BeginDocument exactly once, at the
// first substantive (non-whitespace) byte of the document.
func (p *Parser) ensureBeginDocument() {
	if !p.started {
		p.started = true
		p.sink.BeginDocument(p.loc())
	}
}

// errOrNil returns p.err as an error, or a true nil error if p.err is
// nil. Returning p.err (a *ParseError) directly from a function whose
// result type is error would produce a non-nil interface value even
// when the pointer is nil, so every return path on which p.err may still
// be nil goes through this helper; the others return p.err only once it
// is known to be set.
func (p *Parser) errOrNil() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// raiseRecoverable routes a recoverable anomaly through the error
// handler and records a Stop disposition as the parser's stored error.
func (p *Parser) raiseRecoverable(code Code) Disposition {
	loc := p.loc()
	d := p.errh.Error(code, loc)
	if d == Stop {
		p.err = &ParseError{Code: code, Line: loc.Line, Col: loc.Column}
	}
	return d
}

// raiseFatal routes an unconditional structural anomaly to the error
// handler's FatalError and records the error. Fatal anomalies never
// recover.
func (p *Parser) raiseFatal(code Code) {
	loc := p.loc()
	p.err = &ParseError{Code: code, Line: loc.Line, Col: loc.Column, Fatal: true}
	p.errh.FatalError(code, loc)
}

// Parse runs the state machine over the installed source until either
// the source is exhausted or the outermost value is complete (state ==
// done). It returns nil on success, or the *ParseError that caused a Stop
// disposition or fatal anomaly.
func (p *Parser) Parse() error {
	if p.err != nil {
		return p.err
	}
	for p.pos < len(p.cur) && p.state != stDone {
		if !p.step() {
			return p.err
		}
	}
	return nil
}

// EndParse flushes any number token still active at the top level, pops
// a lingering CR/LF transient state, consumes whitespace that follows a
// complete document in the current slice, and reports unexpected_eof if
// the document was left incomplete.
func (p *Parser) EndParse() error {
	if p.err != nil {
		return p.err
	}
	switch p.state {
	case stCR, stLF:
		p.state = p.stack.pop()
		return p.EndParse()
	case stZero, stInteger, stInvalidNumberInt:
		if p.stack.top() == stRoot {
			p.endIntegerValue()
			return p.errOrNil()
		}
	case stFraction2, stExp3, stInvalidNumberFrac:
		if p.stack.top() == stRoot {
			p.endFractionValue()
			return p.errOrNil()
		}
	}
	// Consume trailing whitespace so the reported position lies past it;
	// CheckDone reports any other byte that follows the document.
	for p.state == stDone && p.pos < len(p.cur) && p.skipStructuralWhitespace(stDone) {
		if p.state != stDone {
			p.step() // pops the cr/lf state, consuming the LF of a CRLF pair
		}
	}
	if p.state != stDone {
		p.raiseFatal(UnexpectedEOF)
	}
	return p.errOrNil()
}

// CheckDone scans any input remaining after EndParse for non-whitespace
// bytes, reporting ExtraCharacter if any are found.
func (p *Parser) CheckDone() error {
	if p.err != nil {
		return p.err
	}
	for p.pos < len(p.cur) {
		b := p.cur[p.pos]
		switch b {
		case ' ', '\t':
			p.tr.advance()
			p.pos++
			continue
		case '\r', '\n':
			p.tr.newline()
			p.pos++
			if b == '\r' && p.pos < len(p.cur) && p.cur[p.pos] == '\n' {
				p.pos++ // CRLF counts as a single line break
				p.tr.offset++
			}
			continue
		}
		p.err = &ParseError{Code: ExtraCharacter, Line: p.tr.line, Col: p.tr.col}
		return p.err
	}
	return nil
}

// step processes at most one byte of input (a state may also hand the
// current byte on to the next state without consuming it) and reports
// whether parsing should continue.
func (p *Parser) step() bool {
	switch p.state {
	case stStart:
		return p.stepStart()
	case stExpectValue:
		return p.stepExpectValue()
	case stExpectValueOrEnd:
		return p.stepExpectValueOrEnd()
	case stExpectCommaOrEnd:
		return p.stepExpectCommaOrEnd()
	case stExpectMemberOrEnd:
		return p.stepExpectMemberOrEnd()
	case stExpectMember:
		return p.stepExpectMember()
	case stExpectColon:
		return p.stepExpectColon()
	case stCR:
		return p.stepCR()
	case stLF:
		return p.stepLF()
	case stSlash:
		return p.stepSlash()
	case stSlashSlash:
		return p.stepSlashSlash()
	case stSlashStar:
		return p.stepSlashStar()
	case stSlashStarStar:
		return p.stepSlashStarStar()
	case stStringU1:
		return p.stepString()
	case stEscape:
		return p.stepEscape()
	case stEscapeU1:
		return p.stepEscapeU1()
	case stEscapeU2:
		return p.stepEscapeU2()
	case stEscapeU3:
		return p.stepEscapeU3()
	case stEscapeU4:
		return p.stepEscapeU4()
	case stEscapeExpectSurrogatePair1:
		return p.stepEscapeExpectSurrogatePair1()
	case stEscapeExpectSurrogatePair2:
		return p.stepEscapeExpectSurrogatePair2()
	case stEscapeU6:
		return p.stepEscapeU6()
	case stEscapeU7:
		return p.stepEscapeU7()
	case stEscapeU8:
		return p.stepEscapeU8()
	case stEscapeU9:
		return p.stepEscapeU9()
	case stMinus:
		return p.stepMinus()
	case stZero:
		return p.stepZero()
	case stInteger:
		return p.stepInteger()
	case stFraction1:
		return p.stepFraction1()
	case stFraction2:
		return p.stepFraction2()
	case stExp1:
		return p.stepExp1()
	case stExp2:
		return p.stepExp2()
	case stExp3:
		return p.stepExp3()
	case stInvalidNumberInt:
		return p.stepInvalidNumberInt()
	case stInvalidNumberFrac:
		return p.stepInvalidNumberFrac()
	case stN, stNU, stNUL, stT, stTR, stTRU, stF, stFA, stFAL, stFALS:
		return p.stepKeyword()
	default:
		panic(fmt.Sprintf("jsax: unreachable parser state %v", p.state))
	}
}

// pushNewline enters the CR/LF transient state from a structural
// (whitespace-accepting) context, remembering resume to return to once
// the line break (and a possible paired LF) has been consumed.
func (p *Parser) pushNewline(resume state, b byte) {
	p.stack.push(resume)
	p.tr.newline()
	p.pos++
	if b == '\r' {
		p.state = stCR
	} else {
		p.state = stLF
	}
}

func (p *Parser) stepCR() bool {
	if p.pos < len(p.cur) && p.cur[p.pos] == '\n' {
		p.pos++ // CRLF counts as a single line break, already charged
		p.tr.offset++
	}
	p.state = p.stack.pop()
	return true
}

func (p *Parser) stepLF() bool {
	p.state = p.stack.pop()
	return true
}

// skipStructuralWhitespace consumes spaces, tabs, and line breaks from a
// structural (non-string, non-number) state. It reports true if it
// consumed the current byte (including entering a transient cr/lf
// state), leaving the caller nothing further to do this step.
func (p *Parser) skipStructuralWhitespace(cur state) bool {
	if p.pos >= len(p.cur) {
		return true
	}
	b := p.cur[p.pos]
	switch b {
	case ' ', '\t':
		p.advanceByte()
		return true
	case '\r', '\n':
		p.pushNewline(cur, b)
		return true
	}
	return false
}

// enterComment is called when a structural state sees '/'. It always
// raises IllegalComment first; if the handler continues, it consumes
// the comment body and resumes at `resume` afterward. The '/' byte
// itself is always consumed exactly once, regardless of the handler's
// disposition; see DESIGN.md for why.
func (p *Parser) enterComment(resume state) bool {
	disp := p.raiseRecoverable(IllegalComment)
	p.advanceByte() // consume '/' unconditionally, even on Stop
	if disp == Stop {
		return false
	}
	p.stack.push(resume)
	p.buf = p.buf[:0]
	p.state = stSlash
	return true
}

func (p *Parser) stepSlash() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	switch p.cur[p.pos] {
	case '/':
		p.advanceByte()
		p.state = stSlashSlash
	case '*':
		p.advanceByte()
		p.state = stSlashStar
	default:
		// Malformed comment opener; abandon and resume without consuming.
		p.state = p.stack.pop()
	}
	return true
}

func (p *Parser) emitComment(block bool) {
	if cs, ok := p.sink.(CommentSink); ok {
		cs.Comment(p.loc(), mem.B(p.buf), block)
	}
}

func (p *Parser) stepSlashSlash() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	if b := p.cur[p.pos]; b == '\n' || b == '\r' {
		resume := p.stack.pop()
		p.emitComment(false)
		p.state = resume
		return true // re-dispatch the line break under the resumed state
	}
	p.buf = append(p.buf, p.cur[p.pos])
	p.advanceByte()
	return true
}

func (p *Parser) stepSlashStar() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	if p.cur[p.pos] == '*' {
		p.advanceByte()
		p.state = stSlashStarStar
		return true
	}
	b := p.cur[p.pos]
	p.buf = append(p.buf, b)
	switch {
	case b == '\r' || (b == '\n' && !(p.pos > 0 && p.cur[p.pos-1] == '\r')):
		p.tr.newline()
		p.pos++
	case b == '\n': // LF of a CRLF pair, already counted at the CR
		p.tr.offset++
		p.pos++
	default:
		p.advanceByte()
	}
	return true
}

func (p *Parser) stepSlashStarStar() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	switch p.cur[p.pos] {
	case '/':
		p.advanceByte()
		resume := p.stack.pop()
		p.emitComment(true)
		p.state = resume
	case '*':
		p.buf = append(p.buf, '*')
		p.advanceByte()
		// stay in stSlashStarStar
	default:
		p.buf = append(p.buf, '*')
		p.state = stSlashStar // re-dispatch this byte as comment text
	}
	return true
}

// dispatchValue handles the value-entry dispatch table shared by start,
// expect_value, and expect_value_or_end. It reports whether b began a
// recognized value.
func (p *Parser) dispatchValue(b byte) bool {
	switch {
	case b == '{':
		p.doBeginObject()
	case b == '[':
		p.doBeginArray()
	case b == '"':
		p.beginString(false)
	case b == '-':
		p.ensureBeginDocument()
		p.isNegative = true
		p.buf = p.buf[:0]
		p.precision = 0
		p.advanceByte()
		p.state = stMinus
	case b == '0':
		p.ensureBeginDocument()
		p.isNegative = false
		p.buf = append(p.buf[:0], b)
		p.precision = 0
		p.advanceByte()
		p.state = stZero
	case b >= '1' && b <= '9':
		p.ensureBeginDocument()
		p.isNegative = false
		p.buf = append(p.buf[:0], b)
		p.precision = 0
		p.advanceByte()
		p.state = stInteger
	case b == 'n':
		p.ensureBeginDocument()
		p.advanceByte()
		p.state = stN
	case b == 't':
		p.ensureBeginDocument()
		p.advanceByte()
		p.state = stT
	case b == 'f':
		p.ensureBeginDocument()
		p.advanceByte()
		p.state = stF
	default:
		return false
	}
	return true
}

func (p *Parser) doBeginObject() {
	p.ensureBeginDocument()
	if p.stack.depth()+1 > p.maxDepth {
		if p.raiseRecoverable(MaxDepthExceeded) == Stop {
			return
		}
	}
	p.stack.push(stObject)
	p.advanceByte()
	p.sink.BeginObject(p.loc())
	p.state = stExpectMemberOrEnd
}

func (p *Parser) doBeginArray() {
	p.ensureBeginDocument()
	if p.stack.depth()+1 > p.maxDepth {
		if p.raiseRecoverable(MaxDepthExceeded) == Stop {
			return
		}
	}
	p.stack.push(stArray)
	p.advanceByte()
	p.sink.BeginArray(p.loc())
	p.state = stExpectValueOrEnd
}

func (p *Parser) doEndObject() {
	if p.stack.top() != stObject {
		p.raiseFatal(UnexpectedRightBrace)
		return
	}
	p.stack.pop()
	p.advanceByte()
	p.sink.EndObject(p.loc())
	if p.stack.top() == stRoot {
		p.state = stDone
		p.sink.EndDocument(p.loc())
	} else {
		p.state = stExpectCommaOrEnd
	}
}

func (p *Parser) doEndArray() {
	if p.stack.top() != stArray {
		p.raiseFatal(UnexpectedRightBracket)
		return
	}
	p.stack.pop()
	p.advanceByte()
	p.sink.EndArray(p.loc())
	if p.stack.top() == stRoot {
		p.state = stDone
		p.sink.EndDocument(p.loc())
	} else {
		p.state = stExpectCommaOrEnd
	}
}

func (p *Parser) stepStart() bool {
	if p.skipStructuralWhitespace(stStart) {
		return true
	}
	b := p.cur[p.pos]
	if b == '\'' {
		p.ensureBeginDocument()
		if p.raiseRecoverable(SingleQuote) == Stop {
			return false
		}
		p.advanceByte()
		return true
	}
	if b == '/' {
		p.ensureBeginDocument()
		return p.enterComment(stStart)
	}
	if p.dispatchValue(b) {
		return p.err == nil
	}
	p.ensureBeginDocument()
	if p.raiseRecoverable(InvalidJSONText) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) stepExpectValueOrEnd() bool {
	if p.skipStructuralWhitespace(stExpectValueOrEnd) {
		return true
	}
	b := p.cur[p.pos]
	if b == ']' {
		p.doEndArray()
		return p.err == nil
	}
	if b == '\'' {
		if p.raiseRecoverable(SingleQuote) == Stop {
			return false
		}
		p.advanceByte()
		return true
	}
	if b == '/' {
		return p.enterComment(stExpectValueOrEnd)
	}
	if p.dispatchValue(b) {
		return p.err == nil
	}
	if p.raiseRecoverable(ExpectedValue) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) stepExpectValue() bool {
	if p.skipStructuralWhitespace(stExpectValue) {
		return true
	}
	b := p.cur[p.pos]
	if b == ']' && p.stack.top() == stArray {
		if p.raiseRecoverable(ExtraComma) == Stop {
			return false
		}
		p.doEndArray()
		return p.err == nil
	}
	if b == ',' && p.stack.top() == stArray {
		if p.raiseRecoverable(ExtraComma) == Stop {
			return false
		}
		p.advanceByte()
		return true
	}
	if b == '\'' {
		if p.raiseRecoverable(SingleQuote) == Stop {
			return false
		}
		p.advanceByte()
		return true
	}
	if b == '/' {
		return p.enterComment(stExpectValue)
	}
	if p.dispatchValue(b) {
		return p.err == nil
	}
	if p.raiseRecoverable(ExpectedValue) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) stepExpectMemberOrEnd() bool {
	if p.skipStructuralWhitespace(stExpectMemberOrEnd) {
		return true
	}
	b := p.cur[p.pos]
	switch b {
	case '}':
		p.doEndObject()
		return p.err == nil
	case '"':
		p.beginString(true)
		return true
	case '\'':
		if p.raiseRecoverable(SingleQuote) == Stop {
			return false
		}
		p.advanceByte()
		return true
	case '/':
		return p.enterComment(stExpectMemberOrEnd)
	}
	if p.raiseRecoverable(ExpectedName) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) stepExpectMember() bool {
	if p.skipStructuralWhitespace(stExpectMember) {
		return true
	}
	b := p.cur[p.pos]
	switch b {
	case '}':
		if p.raiseRecoverable(ExtraComma) == Stop {
			return false
		}
		p.doEndObject()
		return p.err == nil
	case '"':
		p.beginString(true)
		return true
	case '\'':
		if p.raiseRecoverable(SingleQuote) == Stop {
			return false
		}
		p.advanceByte()
		return true
	case '/':
		return p.enterComment(stExpectMember)
	}
	if p.raiseRecoverable(ExpectedName) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) stepExpectColon() bool {
	if p.skipStructuralWhitespace(stExpectColon) {
		return true
	}
	b := p.cur[p.pos]
	if b == ':' {
		p.advanceByte()
		p.state = stExpectValue
		return true
	}
	if b == '/' {
		return p.enterComment(stExpectColon)
	}
	if p.raiseRecoverable(ExpectedColon) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

func (p *Parser) beginMemberOrElement() {
	p.advanceByte()
	if p.stack.top() == stObject {
		p.state = stExpectMember
	} else {
		p.state = stExpectValue
	}
}

func (p *Parser) stepExpectCommaOrEnd() bool {
	if p.skipStructuralWhitespace(stExpectCommaOrEnd) {
		return true
	}
	b := p.cur[p.pos]
	switch b {
	case ',':
		p.beginMemberOrElement()
		return true
	case '}':
		if p.stack.top() == stObject {
			p.doEndObject()
			return p.err == nil
		}
		p.raiseFatal(UnexpectedRightBrace)
		return false
	case ']':
		if p.stack.top() == stArray {
			p.doEndArray()
			return p.err == nil
		}
		p.raiseFatal(UnexpectedRightBracket)
		return false
	case '/':
		return p.enterComment(stExpectCommaOrEnd)
	}
	code := ExpectedCommaOrRightBracket
	if p.stack.top() == stObject {
		code = ExpectedCommaOrRightBrace
	}
	if p.raiseRecoverable(code) == Stop {
		return false
	}
	p.advanceByte()
	return true
}

// stepKeyword drives the per-character path for true/false/null. Every
// keyword literal is lexed one byte at a time through it; there is no
// multi-byte fast path, so a chunk boundary may fall anywhere inside one.
func (p *Parser) stepKeyword() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	b := p.cur[p.pos]
	switch p.state {
	case stN:
		return p.keywordStep(b, 'u', stNU, nullMismatch)
	case stNU:
		return p.keywordStep(b, 'l', stNUL, nullMismatch)
	case stNUL:
		if b == 'l' {
			p.advanceByte()
			p.sink.NullValue(p.loc())
			p.afterValue()
			return true
		}
		return p.keywordMismatch(nullMismatch)
	case stT:
		return p.keywordStep(b, 'r', stTR, trueMismatch)
	case stTR:
		return p.keywordStep(b, 'u', stTRU, trueMismatch)
	case stTRU:
		if b == 'e' {
			p.advanceByte()
			p.sink.BoolValue(p.loc(), true)
			p.afterValue()
			return true
		}
		return p.keywordMismatch(trueMismatch)
	case stF:
		return p.keywordStep(b, 'a', stFA, falseMismatch)
	case stFA:
		return p.keywordStep(b, 'l', stFAL, falseMismatch)
	case stFAL:
		return p.keywordStep(b, 's', stFALS, falseMismatch)
	case stFALS:
		if b == 'e' {
			p.advanceByte()
			p.sink.BoolValue(p.loc(), false)
			p.afterValue()
			return true
		}
		return p.keywordMismatch(falseMismatch)
	}
	panic("jsax: unreachable keyword state")
}

type keywordKind int

const (
	nullMismatch keywordKind = iota
	trueMismatch
	falseMismatch
)

func (p *Parser) keywordStep(b, want byte, next state, kind keywordKind) bool {
	if b == want {
		p.advanceByte()
		p.state = next
		return true
	}
	return p.keywordMismatch(kind)
}

// keywordMismatch handles a keyword literal that doesn't match
// true/false/null. Recovery emits the best-effort value the prefix
// implied and resumes without consuming the mismatched byte.
func (p *Parser) keywordMismatch(kind keywordKind) bool {
	if p.raiseRecoverable(InvalidValue) == Stop {
		return false
	}
	loc := p.loc()
	switch kind {
	case nullMismatch:
		p.sink.NullValue(loc)
	case trueMismatch:
		p.sink.BoolValue(loc, true)
	case falseMismatch:
		p.sink.BoolValue(loc, false)
	}
	p.afterValue()
	return true
}
