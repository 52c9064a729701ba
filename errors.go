// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import "fmt"

// A Code identifies the kind of anomaly a Parser has detected. Every Code
// maps to a fixed, documented recovery action (see ErrorHandler) except for
// the fatal ones (UnexpectedRightBrace, UnexpectedRightBracket, and the
// UnexpectedEOF reported by EndParse), which bypass ErrorHandler.Error.
type Code int

// Error code taxonomy.
const (
	NoError Code = iota

	UnexpectedEOF
	InvalidJSONText
	ExtraCharacter
	MaxDepthExceeded
	SingleQuote
	IllegalControlCharacter
	IllegalCharacterInString
	IllegalEscapedCharacter
	ExpectedCodepointSurrogatePair
	InvalidHexEscapeSequence
	OverlongUTF8Sequence
	UnpairedHighSurrogate
	ExpectedContinuationByte
	IllegalSurrogateValue
	IllegalCodepoint
	ExpectedCommaOrRightBrace
	ExpectedCommaOrRightBracket
	UnexpectedRightBrace
	UnexpectedRightBracket
	ExpectedColon
	ExpectedName
	ExpectedValue
	InvalidValue
	InvalidNumber
	LeadingZero
	ExtraComma
	IllegalComment
)

var codeNames = [...]string{
	NoError:                        "no_error",
	UnexpectedEOF:                  "unexpected_eof",
	InvalidJSONText:                "invalid_json_text",
	ExtraCharacter:                 "extra_character",
	MaxDepthExceeded:               "max_depth_exceeded",
	SingleQuote:                    "single_quote",
	IllegalControlCharacter:        "illegal_control_character",
	IllegalCharacterInString:       "illegal_character_in_string",
	IllegalEscapedCharacter:        "illegal_escaped_character",
	ExpectedCodepointSurrogatePair: "expected_codepoint_surrogate_pair",
	InvalidHexEscapeSequence:       "invalid_hex_escape_sequence",
	OverlongUTF8Sequence:           "over_long_utf8_sequence",
	UnpairedHighSurrogate:          "unpaired_high_surrogate",
	ExpectedContinuationByte:       "expected_continuation_byte",
	IllegalSurrogateValue:          "illegal_surrogate_value",
	IllegalCodepoint:               "illegal_codepoint",
	ExpectedCommaOrRightBrace:      "expected_comma_or_right_brace",
	ExpectedCommaOrRightBracket:    "expected_comma_or_right_bracket",
	UnexpectedRightBrace:           "unexpected_right_brace",
	UnexpectedRightBracket:         "unexpected_right_bracket",
	ExpectedColon:                  "expected_colon",
	ExpectedName:                   "expected_name",
	ExpectedValue:                  "expected_value",
	InvalidValue:                   "invalid_value",
	InvalidNumber:                  "invalid_number",
	LeadingZero:                    "leading_zero",
	ExtraComma:                     "extra_comma",
	IllegalComment:                 "illegal_comment",
}

func (c Code) String() string {
	if int(c) >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown_error"
}

// A ParseError reports a single anomaly detected at a specific location.
// It is the concrete error type returned by Parse, EndParse, and
// CheckDone.
type ParseError struct {
	Code Code
	Line int // 1-based
	Col  int // 1-based

	// Fatal reports whether this error terminated parsing unconditionally.
	// A container-close mismatch (unexpected_right_brace,
	// unexpected_right_bracket) never goes through ErrorHandler.Error.
	Fatal bool
}

func (e *ParseError) Error() string {
	kind := "error"
	if e.Fatal {
		kind = "fatal error"
	}
	return fmt.Sprintf("%s: %s at line %d, column %d", kind, e.Code, e.Line, e.Col)
}

// Disposition is the action a Parser takes after ErrorHandler.Error
// returns.
type Disposition int

const (
	// Stop aborts the parse; the error is stored and Parse/EndParse
	// returns immediately with state preserved.
	Stop Disposition = iota
	// Continue performs the documented fixed recovery for the anomaly and
	// resumes parsing.
	Continue
)

// An ErrorHandler is the external collaborator that decides whether a
// recoverable anomaly aborts or is recovered from. The core parser
// carries no policy of its own: every Code's recovery action is fixed
// per call site, but whether recovery is attempted at all is up to the
// handler.
type ErrorHandler interface {
	// Error reports a recoverable anomaly at the given location and
	// returns whether the parser should Stop or Continue.
	Error(code Code, loc Location) Disposition

	// FatalError reports an anomaly that terminates parsing
	// unconditionally; its return value (if any) is ignored.
	FatalError(code Code, loc Location)
}

// StopOnError is an ErrorHandler that always stops on the first anomaly.
// It is the zero-configuration default used by NewParser.
type StopOnError struct{}

func (StopOnError) Error(Code, Location) Disposition { return Stop }
func (StopOnError) FatalError(Code, Location)         {}

// ContinueOnError is an ErrorHandler that always recovers using each
// anomaly's documented fixed recovery action. Useful for lenient
// ingestion of near-JSON text (logs, hand-edited config).
type ContinueOnError struct{}

func (ContinueOnError) Error(Code, Location) Disposition { return Continue }
func (ContinueOnError) FatalError(Code, Location)         {}
