// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import (
	"errors"
	"strings"

	"github.com/creachadair/jsax/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added. It is independent of Parser; callers
// building their own event payloads (e.g. a CommentSink re-emitting text
// elsewhere) can use it without constructing a parser.
func Quote(src string) string { return `"` + string(escape.Quote(mem.S(src))) + `"` }

// Unquote decodes a JSON string value, including its surrounding
// quotation marks, using the same escape table as Parser's string lexer.
// Invalid escapes are replaced by the Unicode replacement rune. Unlike
// the Parser, it does not join a \uXXXX surrogate pair: each half becomes
// a replacement rune. Unquote reports an error for an incomplete escape
// sequence.
//
// Unquote is a convenience for decoding a value already known to be a
// complete, self-contained JSON string literal; it does not participate
// in the incremental parser and performs no UTF-8 validation of its own
// beyond what escape.Unquote does.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
