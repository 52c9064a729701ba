// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"unicode/utf8"

	"go4.org/mem"
)

// flushRun validates cur[runStart:end] as UTF-8 and appends it to buf. It
// is called at every escape entry, at the terminating quote, and when a
// control character interrupts a run.
func (p *Parser) flushRun(end int) bool {
	run := p.cur[p.runStart:end]
	if len(run) > 0 {
		if r := validateUTF8(run); r != utf8OK {
			if p.raiseRecoverable(r.toCode()) == Stop {
				return false
			}
			// Recovery: keep the bytes as given; the validator's error is
			// advisory once the handler has chosen to continue.
		}
		p.buf = append(p.buf, run...)
	}
	p.runStart = end
	return true
}

// beginString starts lexing a string. isName marks it as an object member
// key rather than a value.
func (p *Parser) beginString(isName bool) {
	p.ensureBeginDocument()
	if isName {
		p.stack.push(stMemberName)
	}
	p.buf = p.buf[:0]
	p.sawEscape = false
	p.advanceByte() // consume the opening quote
	p.runStart = p.pos
	p.state = stStringU1
}

// finishString dispatches the completed string to the sink as either a
// member name or a value, per the stack marker beginString pushed.
func (p *Parser) finishString(view mem.RO) {
	if p.stack.top() == stMemberName {
		p.stack.pop()
		p.sink.Name(p.loc(), view)
		p.state = stExpectColon
		return
	}
	p.sink.StringValue(p.loc(), view)
	switch p.stack.top() {
	case stObject, stArray:
		p.state = stExpectCommaOrEnd
	default:
		p.state = stDone
		p.sink.EndDocument(p.loc())
	}
}

func (p *Parser) stepString() bool {
	if p.pos >= len(p.cur) {
		return true // chunk exhausted mid-run; state and runStart are preserved
	}
	b := p.cur[p.pos]
	switch {
	case b == '"':
		// Zero-copy fast path: if the string never diverged into buf (no
		// escape, no control-character recovery, no chunk-boundary
		// flush), hand the sink the raw input slice directly.
		var view mem.RO
		if !p.sawEscape {
			raw := p.cur[p.runStart:p.pos]
			if r := validateUTF8(raw); r != utf8OK {
				if p.raiseRecoverable(r.toCode()) == Stop {
					return false
				}
			}
			view = mem.B(raw)
		} else {
			if !p.flushRun(p.pos) {
				return false
			}
			view = mem.B(p.buf)
		}
		p.advanceByte() // consume closing quote
		p.finishString(view)
		return true

	case b == '\\':
		if !p.flushRun(p.pos) {
			return false
		}
		p.sawEscape = true
		p.advanceByte() // consume backslash
		p.state = stEscape
		return true

	case b == '\r' || b == '\n':
		if !p.flushRun(p.pos) {
			return false
		}
		p.sawEscape = true
		if p.raiseRecoverable(IllegalCharacterInString) == Stop {
			return false
		}
		p.buf = append(p.buf, b)
		p.stack.push(stStringU1)
		p.tr.newline()
		p.pos++
		p.runStart = p.pos
		if b == '\r' {
			p.state = stCR
		} else {
			p.state = stLF
		}
		return true

	case b == '\t' || b < 0x20:
		if !p.flushRun(p.pos) {
			return false
		}
		p.sawEscape = true
		code := IllegalControlCharacter
		if b == '\t' {
			code = IllegalCharacterInString
		}
		if p.raiseRecoverable(code) == Stop {
			return false
		}
		p.buf = append(p.buf, b)
		p.pos++
		p.tr.advance()
		p.runStart = p.pos
		return true

	default:
		p.pos++
		p.tr.advance()
		return true
	}
}

func (p *Parser) stepEscape() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	b := p.cur[p.pos]
	switch b {
	case '"', '\\', '/':
		p.buf = append(p.buf, b)
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 'b':
		p.buf = append(p.buf, '\b')
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 'f':
		p.buf = append(p.buf, '\f')
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 'n':
		p.buf = append(p.buf, '\n')
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 'r':
		p.buf = append(p.buf, '\r')
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 't':
		p.buf = append(p.buf, '\t')
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	case 'u':
		p.advanceByte()
		p.cp = 0
		p.state = stEscapeU1
	default:
		if p.raiseRecoverable(IllegalEscapedCharacter) == Stop {
			return false
		}
		// Recovery: drop the invalid escape and resume the string body
		// from the next byte.
		p.advanceByte()
		p.runStart = p.pos
		p.state = stStringU1
	}
	return true
}

// readHexInto accumulates one hex digit of *cp (cp = cp*16 + digit). It
// reports (consumed, ok):
// consumed is false if the call returned without resolving a digit for
// this slot (chunk exhausted, or an invalid digit was skipped and the
// same slot must be retried); ok is false if Parse should stop.
func (p *Parser) readHexInto(cp *rune) (consumed, ok bool) {
	if p.pos >= len(p.cur) {
		return false, true
	}
	b := p.cur[p.pos]
	v, valid := hexVal(b)
	if !valid {
		if p.raiseRecoverable(InvalidHexEscapeSequence) == Stop {
			return false, false
		}
		// Recovery: skip the offending byte and retry this digit slot.
		p.advanceByte()
		return false, true
	}
	*cp = *cp*16 + rune(v)
	p.advanceByte()
	return true, true
}

func (p *Parser) stepEscapeU1() bool {
	consumed, ok := p.readHexInto(&p.cp)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU2
	}
	return true
}

func (p *Parser) stepEscapeU2() bool {
	consumed, ok := p.readHexInto(&p.cp)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU3
	}
	return true
}

func (p *Parser) stepEscapeU3() bool {
	consumed, ok := p.readHexInto(&p.cp)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU4
	}
	return true
}

func (p *Parser) stepEscapeU4() bool {
	consumed, ok := p.readHexInto(&p.cp)
	if !ok {
		return false
	}
	if !consumed {
		return true
	}
	if p.cp >= 0xD800 && p.cp <= 0xDBFF {
		p.state = stEscapeExpectSurrogatePair1
		return true
	}
	if p.cp >= 0xDC00 && p.cp <= 0xDFFF {
		// A low surrogate with no preceding high surrogate: there is no
		// pair to assemble, unlike surrogateMismatch's case.
		if p.raiseRecoverable(IllegalCodepoint) == Stop {
			return false
		}
		p.emitScalarAndResume(utf8.RuneError)
		return true
	}
	p.emitScalarAndResume(p.cp)
	return true
}

// surrogateMismatch handles a high surrogate that is not followed by a
// "\uXXXX" low-surrogate escape. Recovery emits the Unicode replacement
// rune in place of the unpaired surrogate and resumes the string body.
func (p *Parser) surrogateMismatch() bool {
	if p.raiseRecoverable(ExpectedCodepointSurrogatePair) == Stop {
		return false
	}
	p.emitScalarAndResume(utf8.RuneError)
	return true
}

func (p *Parser) stepEscapeExpectSurrogatePair1() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	if p.cur[p.pos] == '\\' {
		p.advanceByte()
		p.state = stEscapeExpectSurrogatePair2
		return true
	}
	return p.surrogateMismatch()
}

func (p *Parser) stepEscapeExpectSurrogatePair2() bool {
	if p.pos >= len(p.cur) {
		return true
	}
	if p.cur[p.pos] == 'u' {
		p.advanceByte()
		p.cp2 = 0
		p.state = stEscapeU6
		return true
	}
	return p.surrogateMismatch()
}

func (p *Parser) stepEscapeU6() bool {
	consumed, ok := p.readHexInto(&p.cp2)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU7
	}
	return true
}

func (p *Parser) stepEscapeU7() bool {
	consumed, ok := p.readHexInto(&p.cp2)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU8
	}
	return true
}

func (p *Parser) stepEscapeU8() bool {
	consumed, ok := p.readHexInto(&p.cp2)
	if !ok {
		return false
	}
	if consumed {
		p.state = stEscapeU9
	}
	return true
}

func (p *Parser) stepEscapeU9() bool {
	consumed, ok := p.readHexInto(&p.cp2)
	if !ok {
		return false
	}
	if !consumed {
		return true
	}
	final := 0x10000 + ((p.cp & 0x3FF) << 10) + (p.cp2 & 0x3FF)
	p.emitScalarAndResume(final)
	return true
}

// emitScalarAndResume appends the UTF-8 encoding of r to buf and returns
// lexing to the string body.
func (p *Parser) emitScalarAndResume(r rune) {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	p.buf = append(p.buf, tmp[:n]...)
	p.runStart = p.pos
	p.state = stStringU1
}

func hexVal(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}
