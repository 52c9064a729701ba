// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsax implements an incremental, push-style JSON parser: a
// deterministic finite-state machine that consumes JSON text in
// arbitrarily sliced input chunks and emits structural events to a
// caller-supplied EventSink. It never materializes a tree; it is the
// lexing-and-validation engine that package domtree composes with to
// build one.
//
// # Incremental parsing
//
// Install the next available slice of input with SetSource, then call
// Parse to run the machine until either the slice is exhausted or the
// outermost value is complete. All of the parser's in-flight state (the
// string buffer, number digits, codepoint assembler, nesting stack)
// survives across calls, so a document may be fed in chunks of any size,
// split at any byte boundary, including mid-string, mid-number, and
// mid-escape:
//
//	p := jsax.NewParser(sink, handler)
//	p.SetSource(chunk1)
//	if err := p.Parse(); err != nil {
//		log.Fatalf("Parse failed: %v", err)
//	}
//	p.SetSource(chunk2)
//	if err := p.Parse(); err != nil {
//		log.Fatalf("Parse failed: %v", err)
//	}
//	if err := p.EndParse(); err != nil {
//		log.Fatalf("incomplete document: %v", err)
//	}
//
// # Events
//
// Parse delivers events to an EventSink in document order: a structural
// event at depth d always completes before any event at depth d+1 or for
// the next sibling at d. BeginDocument fires exactly once, at the first
// substantive byte; EndDocument fires exactly once, when the outermost
// value terminates.
//
// # Errors
//
// Every recoverable anomaly is routed through an ErrorHandler, which
// decides whether the parser stops or performs the anomaly's documented,
// fixed recovery action. A handful of structural anomalies are fatal and
// bypass Error entirely, calling FatalError and aborting unconditionally,
// because continuing would corrupt the nesting invariant of the event
// stream. In case of error, parsing is terminated and an error of
// concrete type *jsax.ParseError is returned.
package jsax
