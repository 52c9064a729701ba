// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax

import "go4.org/mem"

// An EventSink receives the structural and value events produced by a
// Parser, in the order they occur in the document. Every method
// receives the Location of the byte that completed the event.
//
// view arguments (Name, String) are borrowed and UTF-8-validated; they
// are valid only for the duration of the call. A sink that needs to keep
// the data beyond the call must copy it, e.g. with view.StringCopy() or
// append([]byte(nil), view...).
type EventSink interface {
	BeginDocument(loc Location)
	EndDocument(loc Location)

	BeginObject(loc Location)
	EndObject(loc Location)

	BeginArray(loc Location)
	EndArray(loc Location)

	// Name reports an object member's key. Always followed by exactly one
	// value event (possibly BeginObject/BeginArray, whose matching End
	// closes the member).
	Name(loc Location, view mem.RO)

	StringValue(loc Location, view mem.RO)
	IntegerValue(loc Location, v int64)
	UIntegerValue(loc Location, v uint64)

	// DoubleValue reports a floating-point value. precision is the
	// approximate count of significant digits the source literal carried:
	// the digits before its decimal point or exponent marker plus its
	// fraction digits (0 for an integer too large for either integer
	// type). It is a hint for formatters, not a guarantee.
	DoubleValue(loc Location, v float64, precision uint8)

	BoolValue(loc Location, v bool)
	NullValue(loc Location)
}

// A CommentSink is an optional capability an EventSink may implement to
// observe non-standard comments. If a sink does not implement it,
// comments are silently discarded after the error dispatcher's recovery
// runs.
type CommentSink interface {
	Comment(loc Location, view mem.RO, block bool)
}

// NopSink is an EventSink that discards every event. It is useful for
// validating input without building anything, and as an embeddable base
// for sinks that only care about a handful of events.
type NopSink struct{}

func (NopSink) BeginDocument(Location)                   {}
func (NopSink) EndDocument(Location)                     {}
func (NopSink) BeginObject(Location)                     {}
func (NopSink) EndObject(Location)                       {}
func (NopSink) BeginArray(Location)                      {}
func (NopSink) EndArray(Location)                        {}
func (NopSink) Name(Location, mem.RO)                    {}
func (NopSink) StringValue(Location, mem.RO)             {}
func (NopSink) IntegerValue(Location, int64)             {}
func (NopSink) UIntegerValue(Location, uint64)           {}
func (NopSink) DoubleValue(Location, float64, uint8)     {}
func (NopSink) BoolValue(Location, bool)                 {}
func (NopSink) NullValue(Location)                       {}
