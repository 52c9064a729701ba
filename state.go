// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

// A state is one value of the parser's finite-state machine. States are
// grouped below by the phase of input they belong to; see Parser.step in
// parser.go for how the driver loop dispatches on them.
type state int

const (
	stRoot state = iota // sentinel: bottom of the state stack

	stStart              // before any substantive byte has been seen
	stDone               // the outermost value is complete
	stExpectCommaOrEnd   // after a value, inside an object or array
	stExpectMemberOrEnd  // "{" just seen
	stExpectMember       // after a comma in an object
	stExpectColon        // after a member name
	stExpectValue        // after a colon, or after a comma in an array
	stExpectValueOrEnd   // "[" just seen
	stObject             // on the state stack: an open object frame
	stArray              // on the state stack: an open array frame
	stMemberName         // on the state stack: a string being lexed is a member name

	// Non-standard comment states. Entering any of these always raises
	// illegal_comment through the error dispatcher first.
	stSlash
	stSlashSlash
	stSlashStar
	stSlashStarStar

	// Transient line-terminator states; the enclosing state is pushed
	// before entering these and popped on the following byte.
	stCR
	stLF

	// String body.
	stStringU1

	// Escape sequences within a string.
	stEscape
	stEscapeU1
	stEscapeU2
	stEscapeU3
	stEscapeU4
	stEscapeExpectSurrogatePair1
	stEscapeExpectSurrogatePair2
	stEscapeU6
	stEscapeU7
	stEscapeU8
	stEscapeU9

	// Number lexing.
	stMinus
	stZero
	stInteger
	stFraction1
	stFraction2
	stExp1
	stExp2
	stExp3

	// Entered after invalid_number has been raised once for the current
	// value; consumes bytes that don't belong to it until a real
	// terminator is found.
	stInvalidNumberInt
	stInvalidNumberFrac

	// Keyword states. Every true/false/null literal is lexed one byte at a
	// time through them; there is no multi-byte fast path.
	stN
	stNU
	stNUL
	stT
	stTR
	stTRU
	stF
	stFA
	stFAL
	stFALS
)

var stateNames = [...]string{
	stRoot:              "root",
	stStart:              "start",
	stDone:               "done",
	stExpectCommaOrEnd:   "expect_comma_or_end",
	stExpectMemberOrEnd:  "expect_member_name_or_end",
	stExpectMember:       "expect_member_name",
	stExpectColon:        "expect_colon",
	stExpectValue:        "expect_value",
	stExpectValueOrEnd:   "expect_value_or_end",
	stObject:             "object",
	stArray:              "array",
	stMemberName:         "member_name",
	stSlash:              "slash",
	stSlashSlash:         "slash_slash",
	stSlashStar:          "slash_star",
	stSlashStarStar:      "slash_star_star",
	stCR:                 "cr",
	stLF:                 "lf",
	stStringU1:           "string_u1",
	stEscape:             "escape",
	stEscapeU1:           "escape_u1",
	stEscapeU2:           "escape_u2",
	stEscapeU3:           "escape_u3",
	stEscapeU4:           "escape_u4",
	stEscapeExpectSurrogatePair1: "escape_expect_surrogate_pair1",
	stEscapeExpectSurrogatePair2: "escape_expect_surrogate_pair2",
	stEscapeU6:           "escape_u6",
	stEscapeU7:           "escape_u7",
	stEscapeU8:           "escape_u8",
	stEscapeU9:           "escape_u9",
	stMinus:              "minus",
	stZero:               "zero",
	stInteger:            "integer",
	stFraction1:          "fraction1",
	stFraction2:          "fraction2",
	stExp1:               "exp1",
	stExp2:               "exp2",
	stExp3:               "exp3",
	stInvalidNumberInt:   "invalid_number_int",
	stInvalidNumberFrac:  "invalid_number_frac",
	stN:                  "n",
	stNU:                 "nu",
	stNUL:                "nul",
	stT:                  "t",
	stTR:                 "tr",
	stTRU:                "tru",
	stF:                  "f",
	stFA:                 "fa",
	stFAL:                "fal",
	stFALS:               "fals",
}

func (s state) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) && stateNames[s] != "" {
		return stateNames[s]
	}
	return "invalid"
}

// A stateStack remembers the enclosing structural context while the
// machine is in a transient sub-state (comment, line terminator, string,
// member name). Its bottom is always the sentinel stRoot.
//
// This is a plain slice: no generic stack abstraction is warranted for a
// single concrete element type used only inside this package.
type stateStack struct {
	frames []state
}

func newStateStack() *stateStack {
	return &stateStack{frames: []state{stRoot}}
}

func (s *stateStack) push(st state) { s.frames = append(s.frames, st) }

func (s *stateStack) pop() state {
	last := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return last
}

func (s *stateStack) top() state { return s.frames[len(s.frames)-1] }

// depth reports the count of object/array frames currently pushed.
func (s *stateStack) depth() int {
	n := 0
	for _, f := range s.frames {
		if f == stObject || f == stArray {
			n++
		}
	}
	return n
}
