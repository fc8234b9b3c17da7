package mirror

import (
	"math"
	"math/big"
	"time"

	"github.com/dlclark/regexp2"
)

// Kind identifies the variant of a reconstructed Value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindFunction
	KindDate
	KindRegExp
	KindError
	KindMap
	KindSet
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindBigInt:    "bigint",
	KindString:    "string",
	KindSymbol:    "symbol",
	KindFunction:  "function",
	KindDate:      "date",
	KindRegExp:    "regexp",
	KindError:     "error",
	KindMap:       "map",
	KindSet:       "set",
	KindArray:     "array",
	KindObject:    "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a locally reconstructed remote value.
type Value interface {
	Kind() Kind
}

type Undefined struct{}

func (Undefined) Kind() Kind { return KindUndefined }

type Null struct{}

func (Null) Kind() Kind { return KindNull }

type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }

type Number float64

func (Number) Kind() Kind { return KindNumber }

// IsNegativeZero reports whether n is -0.
func (n Number) IsNegativeZero() bool {
	return n == 0 && math.Signbit(float64(n))
}

type String string

func (String) Kind() Kind { return KindString }

// BigInt holds an arbitrary precision integer taken from its text rendering.
type BigInt struct {
	Int *big.Int
}

func (*BigInt) Kind() Kind { return KindBigInt }

// Symbol is a freshly made symbol. Two decodes of the same remote symbol
// yield distinct pointers: the protocol carries no identity token.
type Symbol struct {
	Description string
}

func (*Symbol) Kind() Kind { return KindSymbol }

// Anonymous reports whether the symbol was created without a label.
func (s *Symbol) Anonymous() bool { return s.Description == "" }

// Function stands in for a remote function. Bodies are never serialized.
type Function struct {
	Name string
}

func (*Function) Kind() Kind { return KindFunction }

// Call does nothing and returns undefined.
func (*Function) Call(...Value) Value { return Undefined{} }

type Date struct {
	Time time.Time
}

func (*Date) Kind() Kind { return KindDate }

// RegExp is a compiled ECMAScript regular expression with its match cursor.
type RegExp struct {
	Source    string
	Flags     string
	LastIndex int

	re *regexp2.Regexp
}

func (*RegExp) Kind() Kind { return KindRegExp }

// MatchString reports whether s contains a match of the pattern.
func (r *RegExp) MatchString(s string) (bool, error) {
	return r.re.MatchString(s)
}

// String renders the regexp literal.
func (r *RegExp) String() string {
	src := r.Source
	if src == "" {
		src = "(?:)"
	}
	return "/" + src + "/" + r.Flags
}

// Error is a reconstructed remote error. Properties holds the extra fields
// the remote error carried; they are non-enumerable.
type Error struct {
	Constructor ErrorConstructor
	ClassName   string
	Message     string
	Stack       string
	Properties  Properties
}

func (*Error) Kind() Kind { return KindError }

// Name is the display name: the remote class when known, else the
// constructor.
func (e *Error) Name() string {
	if e.ClassName != "" {
		return e.ClassName
	}
	return string(e.Constructor)
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name()
	}
	return e.Name() + ": " + e.Message
}

// define attaches a decoded preview property. message and stack replace the
// corresponding fields, like redefining them on a host error would.
func (e *Error) define(name string, v Value) {
	if s, ok := v.(String); ok {
		switch name {
		case "message":
			e.Message = string(s)
			return
		case "stack":
			e.Stack = string(s)
			return
		}
	}
	e.Properties.Set(name, v, false)
}

// Map is an empty Map. Element data is never part of a preview.
type Map struct{}

func (*Map) Kind() Kind { return KindMap }

// Set is an empty Set. Element data is never part of a preview.
type Set struct{}

func (*Set) Kind() Kind { return KindSet }

type Array []Value

func (Array) Kind() Kind { return KindArray }

// Object is a plain object (Class == nil) or an instance of a named class.
type Object struct {
	Class      *Class
	Properties Properties
}

func (*Object) Kind() Kind { return KindObject }

// TypeName returns the class name, or "" for a plain object.
func (o *Object) TypeName() string {
	if o.Class == nil {
		return ""
	}
	return o.Class.Name
}

// Property is one own property of an object or error.
type Property struct {
	Name       string
	Value      Value
	Enumerable bool
}

// Properties is an insertion ordered property list.
type Properties []Property

// Get returns the value stored under name.
func (p Properties) Get(name string) (Value, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Set assigns name. An existing entry keeps its position.
func (p *Properties) Set(name string, v Value, enumerable bool) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = v
			(*p)[i].Enumerable = enumerable
			return
		}
	}
	*p = append(*p, Property{Name: name, Value: v, Enumerable: enumerable})
}

// Names returns the property names in order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}
