// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package domtree defines an abstract syntax tree for JSON values and a
// builder that constructs one by driving a jsax.Parser. It is the
// optional DOM layer the core jsax package deliberately omits (see
// jsax's package doc).
package domtree

import "github.com/creachadair/jsax"

// A Value is an arbitrary JSON value.
type Value interface {
	// Location reports where this value began in the source.
	Location() jsax.Location
}

// An Object is a collection of key-value members, in source order.
type Object struct {
	loc     jsax.Location
	Members []*Member
}

// Location satisfies the Value interface.
func (o *Object) Location() jsax.Location { return o.loc }

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	loc jsax.Location

	Key   string
	Value Value
}

// Location satisfies the Value interface.
func (m *Member) Location() jsax.Location { return m.loc }

// An Array is a sequence of values, in source order.
type Array struct {
	loc    jsax.Location
	Values []Value
}

// Location satisfies the Value interface.
func (a *Array) Location() jsax.Location { return a.loc }

type datum struct{ loc jsax.Location }

func (d datum) Location() jsax.Location { return d.loc }

// A String is a decoded string value.
type String struct {
	datum
	Text string
}

// An Integer is a negative integer value that fits in an int64.
type Integer struct {
	datum
	Value int64
}

// A UInteger is a non-negative integer value that fits in a uint64.
type UInteger struct {
	datum
	Value uint64
}

// A Double is a floating-point value, or an integer too large for either
// integer representation.
type Double struct {
	datum
	Value     float64
	Precision uint8
}

// A Bool is a Boolean constant, true or false.
type Bool struct {
	datum
	Value bool
}

// Null represents the JSON null constant.
type Null struct{ datum }
