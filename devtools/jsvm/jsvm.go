// Package jsvm turns reconstructed remote values into live objects of a goja
// runtime, so that recorded console output can be inspected with JavaScript.
package jsvm

import (
	"math/big"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"unmirror-go/devtools/mirror"
)

// ErrNotRepresentable is returned for values the runtime has no type for.
var ErrNotRepresentable = xerrors.New("value not representable in runtime")

var maxSafeInteger = big.NewInt(1<<53 - 1)

// Materializer builds runtime values for one goja.Runtime. Named classes get
// one constructor per materializer, so instances of the same class share a
// prototype. A Materializer is not safe for concurrent use, like the runtime
// it wraps.
type Materializer struct {
	rt     *goja.Runtime
	ctors  map[*mirror.Class]*goja.Object
	logger *zap.SugaredLogger
}

// New creates a materializer for rt. A nil logger disables logging.
func New(rt *goja.Runtime, logger *zap.SugaredLogger) *Materializer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Materializer{
		rt:     rt,
		ctors:  make(map[*mirror.Class]*goja.Object),
		logger: logger,
	}
}

// Runtime returns the wrapped runtime.
func (m *Materializer) Runtime() *goja.Runtime {
	return m.rt
}

// ToValue materializes v.
func (m *Materializer) ToValue(v mirror.Value) (goja.Value, error) {
	switch v := v.(type) {
	case nil, mirror.Undefined:
		return goja.Undefined(), nil
	case mirror.Null:
		return goja.Null(), nil
	case mirror.Boolean:
		return m.rt.ToValue(bool(v)), nil
	case mirror.Number:
		return m.rt.ToValue(float64(v)), nil
	case mirror.String:
		return m.rt.ToValue(string(v)), nil
	case *mirror.BigInt:
		// no BigInt type in this runtime; safe integers still fit a number
		if v.Int.CmpAbs(maxSafeInteger) > 0 {
			return nil, xerrors.Errorf("bigint %sn: %w", v.Int, ErrNotRepresentable)
		}
		m.logger.Debugw("bigint materialized as number", "value", v.Int.String())
		return m.rt.ToValue(v.Int.Int64()), nil
	case *mirror.Symbol:
		return goja.NewSymbol(v.Description), nil
	case *mirror.Function:
		return m.function(v)
	case *mirror.Date:
		return m.construct("Date", m.rt.ToValue(v.Time.UnixMilli()))
	case *mirror.RegExp:
		return m.regexp(v)
	case *mirror.Error:
		return m.newError(v)
	case *mirror.Map:
		return m.construct("Map")
	case *mirror.Set:
		return m.construct("Set")
	case mirror.Array:
		items := make([]any, len(v))
		for i, elem := range v {
			item, err := m.ToValue(elem)
			if err != nil {
				return nil, xerrors.Errorf("array element %d: %w", i, err)
			}
			items[i] = item
		}
		return m.rt.NewArray(items...), nil
	case *mirror.Object:
		return m.object(v)
	}
	return nil, xerrors.Errorf("%T: %w", v, ErrNotRepresentable)
}

// Constructor returns the runtime constructor standing in for c. Its name
// property is the class name.
func (m *Materializer) Constructor(c *mirror.Class) (*goja.Object, error) {
	if ctor, ok := m.ctors[c]; ok {
		return ctor, nil
	}
	ctor := m.rt.ToValue(func(call goja.ConstructorCall) *goja.Object {
		return call.This
	}).ToObject(m.rt)
	if err := ctor.DefineDataProperty("name", m.rt.ToValue(c.Name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return nil, xerrors.Errorf("could not name constructor %s: %w", c.Name, err)
	}
	m.ctors[c] = ctor
	return ctor, nil
}

// Set materializes v and stores it as the global name.
func (m *Materializer) Set(name string, v mirror.Value) error {
	jsv, err := m.ToValue(v)
	if err != nil {
		return err
	}
	return m.rt.Set(name, jsv)
}

// Eval runs expr with values bound to the global array args.
func (m *Materializer) Eval(expr string, values []mirror.Value) (goja.Value, error) {
	if err := m.Set("args", mirror.Array(values)); err != nil {
		return nil, err
	}
	res, err := m.rt.RunString(expr)
	if err != nil {
		return nil, xerrors.Errorf("evaluation failed: %w", err)
	}
	return res, nil
}

func (m *Materializer) construct(global string, args ...goja.Value) (*goja.Object, error) {
	obj, err := m.rt.New(m.rt.Get(global), args...)
	if err != nil {
		return nil, xerrors.Errorf("new %s: %w", global, err)
	}
	return obj, nil
}

func (m *Materializer) function(f *mirror.Function) (goja.Value, error) {
	fn := m.rt.ToValue(func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}).ToObject(m.rt)
	if err := fn.DefineDataProperty("name", m.rt.ToValue(f.Name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return nil, err
	}
	return fn, nil
}

// runtimeRegexpFlags are the RegExp flags goja implements.
const runtimeRegexpFlags = "gimsuy"

func (m *Materializer) regexp(r *mirror.RegExp) (goja.Value, error) {
	var flags strings.Builder
	for _, f := range r.Flags {
		if !strings.ContainsRune(runtimeRegexpFlags, f) {
			m.logger.Debugw("regexp flag not supported by runtime, dropping it", "source", r.Source, "flag", string(f))
			continue
		}
		flags.WriteRune(f)
	}
	obj, err := m.construct("RegExp", m.rt.ToValue(r.Source), m.rt.ToValue(flags.String()))
	if err != nil {
		return nil, err
	}
	if err := obj.Set("lastIndex", r.LastIndex); err != nil {
		return nil, err
	}
	return obj, nil
}

func (m *Materializer) newError(e *mirror.Error) (goja.Value, error) {
	obj, err := m.construct(string(e.Constructor), m.rt.ToValue(e.Message))
	if err != nil {
		return nil, err
	}
	if e.Stack != "" {
		if err := obj.DefineDataProperty("stack", m.rt.ToValue(e.Stack), goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return nil, err
		}
	}
	for _, p := range e.Properties {
		if err := m.define(obj, p); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (m *Materializer) object(o *mirror.Object) (goja.Value, error) {
	var obj *goja.Object
	if o.Class == nil {
		obj = m.rt.NewObject()
	} else {
		ctor, err := m.Constructor(o.Class)
		if err != nil {
			return nil, err
		}
		if obj, err = m.rt.New(ctor); err != nil {
			return nil, xerrors.Errorf("new %s: %w", o.Class.Name, err)
		}
	}
	for _, p := range o.Properties {
		if err := m.define(obj, p); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (m *Materializer) define(obj *goja.Object, p mirror.Property) error {
	v, err := m.ToValue(p.Value)
	if err != nil {
		return xerrors.Errorf("property %s: %w", p.Name, err)
	}
	enumerable := goja.FLAG_FALSE
	if p.Enumerable {
		enumerable = goja.FLAG_TRUE
	}
	return obj.DefineDataProperty(p.Name, v, goja.FLAG_TRUE, goja.FLAG_TRUE, enumerable)
}
