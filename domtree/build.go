// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package domtree

import (
	"errors"
	"io"

	"github.com/creachadair/jsax"
	"go4.org/mem"
)

// Build reads and parses a single JSON value from r, returning its tree.
// It reads r in fixed-size blocks and feeds each to a jsax.Parser in
// turn; unlike jsax.Parser itself, Build is not incremental, since a
// complete tree requires the whole value to be present.
func Build(r io.Reader, opts ...Option) (Value, error) {
	b := &builder{}
	cfg := config{maxDepth: 512, errh: jsax.StopOnError{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	b.errh = cfg.errh

	p := jsax.NewParser(b, errRelay{b})
	p.MaxNestingDepth(cfg.maxDepth)

	const blockSize = 8192
	for {
		// A fresh block each time: the parser still reads the previous
		// block when the next one is installed.
		buf := make([]byte, blockSize)
		n, err := r.Read(buf)
		if n > 0 {
			p.SetSource(buf[:n])
			if perr := p.Parse(); perr != nil {
				return nil, perr
			}
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}
	if err := p.EndParse(); err != nil {
		return nil, err
	}
	if err := p.CheckDone(); err != nil {
		return nil, err
	}
	if len(b.stk) != 1 {
		return nil, errors.New("domtree: incomplete value")
	}
	return b.stk[0], nil
}

// Option configures a call to Build.
type Option func(*config)

// MaxNestingDepth sets the maximum nesting depth Build will accept.
func MaxNestingDepth(n int) Option { return func(c *config) { c.maxDepth = n } }

// WithErrorHandler installs an ErrorHandler to decide recovery for
// recoverable anomalies. The default is jsax.StopOnError.
func WithErrorHandler(h jsax.ErrorHandler) Option {
	return func(c *config) { c.errh = h }
}

type config struct {
	maxDepth int
	errh     jsax.ErrorHandler
}

// builder implements jsax.EventSink to assemble a Value tree.
type builder struct {
	stk  []Value
	keys []string // pending member keys, parallel to Object frames on stk
	errh jsax.ErrorHandler
}

func (b *builder) top() Value    { return b.stk[len(b.stk)-1] }
func (b *builder) push(v Value)  { b.stk = append(b.stk, v) }
func (b *builder) pop() Value {
	v := b.top()
	b.stk = b.stk[:len(b.stk)-1]
	return v
}

// reduceValue attaches a completed value to its enclosing container, if
// any; a value with no enclosing container is the document result and is
// left on the stack for Build to retrieve.
func (b *builder) reduceValue(v Value) {
	if len(b.stk) == 0 {
		b.push(v)
		return
	}
	switch parent := b.top().(type) {
	case *Array:
		parent.Values = append(parent.Values, v)
	case *Object:
		key := b.keys[len(b.keys)-1]
		b.keys = b.keys[:len(b.keys)-1]
		parent.Members = append(parent.Members, &Member{loc: v.Location(), Key: key, Value: v})
	default:
		b.push(v)
	}
}

func (b *builder) BeginDocument(jsax.Location) {}
func (b *builder) EndDocument(jsax.Location)   {}

func (b *builder) BeginObject(loc jsax.Location) { b.push(&Object{loc: loc}) }

func (b *builder) EndObject(loc jsax.Location) {
	obj := b.pop().(*Object)
	b.reduceValue(obj)
}

func (b *builder) BeginArray(loc jsax.Location) { b.push(&Array{loc: loc}) }

func (b *builder) EndArray(loc jsax.Location) {
	arr := b.pop().(*Array)
	b.reduceValue(arr)
}

func (b *builder) Name(loc jsax.Location, view mem.RO) {
	b.keys = append(b.keys, view.StringCopy())
}

func (b *builder) StringValue(loc jsax.Location, view mem.RO) {
	b.reduceValue(&String{datum: datum{loc}, Text: view.StringCopy()})
}

func (b *builder) IntegerValue(loc jsax.Location, v int64) {
	b.reduceValue(&Integer{datum: datum{loc}, Value: v})
}

func (b *builder) UIntegerValue(loc jsax.Location, v uint64) {
	b.reduceValue(&UInteger{datum: datum{loc}, Value: v})
}

func (b *builder) DoubleValue(loc jsax.Location, v float64, precision uint8) {
	b.reduceValue(&Double{datum: datum{loc}, Value: v, Precision: precision})
}

func (b *builder) BoolValue(loc jsax.Location, v bool) {
	b.reduceValue(&Bool{datum: datum{loc}, Value: v})
}

func (b *builder) NullValue(loc jsax.Location) {
	b.reduceValue(&Null{datum: datum{loc}})
}

// errRelay adapts the builder's configured jsax.ErrorHandler so Build can
// still surface FatalError through the same *jsax.ParseError path, while
// letting the builder itself stay a pure EventSink.
type errRelay struct{ b *builder }

func (r errRelay) Error(code jsax.Code, loc jsax.Location) jsax.Disposition {
	return r.b.errh.Error(code, loc)
}

func (r errRelay) FatalError(code jsax.Code, loc jsax.Location) {
	r.b.errh.FatalError(code, loc)
}
