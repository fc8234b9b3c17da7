// Package mirror rebuilds local values from the remote object summaries the
// Chrome DevTools Protocol sends for values observed in a remote runtime.
//
// The remote side never serializes object graphs. It sends a tagged summary
// (type, subtype, class name, description and a shallow property preview)
// and Decode turns that into the closest Value it can, recursing into the
// preview. Decoding favours a best-effort result over strict validation; it
// only fails when a date or regular expression is too malformed to build,
// or when the preview nests deeper than the configured limit.
package mirror

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

var (
	// ErrMalformedInput is returned when a date or regular expression
	// cannot be built from the summary at all.
	ErrMalformedInput = xerrors.New("malformed remote object")

	// ErrDepthExceeded is returned when a preview nests deeper than the
	// decoder's limit. The protocol caps preview depth itself, so this only
	// trips on hand-crafted input.
	ErrDepthExceeded = xerrors.New("max recursion depth exceeded")
)

var symbolPattern = regexp.MustCompile(`Symbol\((.*)\)`)

// Decoder reconstructs values from summaries. A Decoder is safe for
// concurrent use; decoders share state only through their ClassRegistry.
type Decoder struct {
	registry    *ClassRegistry
	logger      *zap.SugaredLogger
	maxDepth    int
	symbols     bool
	collections bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRegistry makes the decoder name instances through r.
func WithRegistry(r *ClassRegistry) Option {
	return func(d *Decoder) { d.registry = r }
}

// WithLogger sets the logger degradations are reported to.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Decoder) { d.logger = l }
}

// WithMaxDepth bounds the preview nesting the decoder follows.
func WithMaxDepth(n int) Option {
	return func(d *Decoder) { d.maxDepth = n }
}

// WithoutSymbols decodes symbols as undefined, for targets lacking them.
func WithoutSymbols() Option {
	return func(d *Decoder) { d.symbols = false }
}

// WithoutCollections decodes maps and sets as undefined, for targets
// lacking them.
func WithoutCollections() Option {
	return func(d *Decoder) { d.collections = false }
}

// NewDecoder returns a decoder with its own class registry unless one is
// given.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		maxDepth:    defaultMaxDepth,
		symbols:     true,
		collections: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = NewClassRegistry()
	}
	if d.logger == nil {
		d.logger = zap.NewNop().Sugar()
	}
	if d.maxDepth <= 0 {
		d.maxDepth = defaultMaxDepth
	}
	return d
}

// Registry returns the class registry the decoder names instances with.
func (d *Decoder) Registry() *ClassRegistry {
	return d.registry
}

var defaultDecoder = NewDecoder(WithRegistry(DefaultRegistry))

// Unmirror decodes s with the process-wide DefaultRegistry.
func Unmirror(s *Summary) (Value, error) {
	return defaultDecoder.Decode(s)
}

// Decode reconstructs the value s describes. A nil summary is undefined.
func (d *Decoder) Decode(s *Summary) (Value, error) {
	return d.decode(s, 0)
}

func (d *Decoder) decode(s *Summary, depth int) (Value, error) {
	if s == nil {
		return Undefined{}, nil
	}
	if depth > d.maxDepth {
		return nil, xerrors.Errorf("decoding at depth %d: %w", depth, ErrDepthExceeded)
	}

	switch s.Type {
	case TypeString:
		return decodeString(s), nil
	case TypeFunction:
		return &Function{Name: functionName(s.describe())}, nil
	case TypeUndefined:
		return Undefined{}, nil
	case TypeBoolean:
		str, _ := s.text()
		return Boolean(string(s.Value) == "true" || str == "true"), nil
	case TypeSymbol:
		return d.decodeSymbol(s), nil
	case TypeNumber:
		return d.decodeNumber(s), nil
	case TypeBigint:
		return d.decodeBigInt(s), nil
	}

	switch s.Subtype {
	case SubtypeNull:
		return Null{}, nil
	case SubtypeDate:
		t, err := parseDate(s.describe())
		if err != nil {
			return nil, err
		}
		return &Date{Time: t}, nil
	case SubtypeNode:
		return String(s.ClassName), nil
	case SubtypeRegexp:
		return d.decodeRegExp(s, depth)
	case SubtypeError:
		return d.decodeError(s, depth)
	case SubtypeMap:
		if !d.collections {
			d.logger.Debugw("collections unsupported, map decoded as undefined", "className", s.ClassName)
			return Undefined{}, nil
		}
		return &Map{}, nil
	case SubtypeSet:
		if !d.collections {
			d.logger.Debugw("collections unsupported, set decoded as undefined", "className", s.ClassName)
			return Undefined{}, nil
		}
		return &Set{}, nil
	case SubtypeArray:
		return d.decodeArray(s, depth)
	}

	return d.decodeObject(s, depth)
}

func decodeString(s *Summary) Value {
	if str, ok := s.text(); ok {
		return String(str)
	}
	if !s.hasValue() {
		return Undefined{}
	}
	v, err := valueFromJSON(s.Value)
	if err != nil {
		return String(s.Value)
	}
	return v
}

func (d *Decoder) decodeSymbol(s *Summary) Value {
	if !d.symbols {
		d.logger.Debugw("symbols unsupported, symbol decoded as undefined", "description", s.Description)
		return Undefined{}
	}
	var label string
	if m := symbolPattern.FindStringSubmatch(s.describe()); m != nil {
		label = m[1]
	}
	return &Symbol{Description: label}
}

func (d *Decoder) decodeNumber(s *Summary) Value {
	if n, ok := s.number(); ok {
		return Number(n)
	}
	text := s.numericText()
	if text != nil {
		switch *text {
		case "NaN":
			return Number(math.NaN())
		case "-Infinity":
			return Number(math.Inf(-1))
		case "Infinity":
			return Number(math.Inf(1))
		case "-0":
			return Number(math.Copysign(0, -1))
		}
	}
	v := ParseNumericText(text, Undefined{})
	if _, ok := v.(Number); !ok && text != nil {
		d.logger.Debugw("numeric text is not a number", "text", *text)
	}
	return v
}

func (d *Decoder) decodeBigInt(s *Summary) Value {
	text := s.UnserializableValue
	if text == "" {
		text = s.describe()
	}
	if z, ok := new(big.Int).SetString(strings.TrimSuffix(text, "n"), 10); ok {
		return &BigInt{Int: z}
	}
	d.logger.Debugw("bigint text is not an integer", "text", text)
	return ParseNumericText(s.numericText(), Undefined{})
}

func (d *Decoder) decodeError(s *Summary, depth int) (Value, error) {
	ctor, known := LookupErrorConstructor(s.ClassName)
	if !known {
		d.logger.Debugw("unknown error class, using Error", "className", s.ClassName)
	}

	lines := strings.Split(s.describe(), "\n")
	msg := lines[0]
	// "TypeError: msg" -> "msg"
	if s.ClassName != "" && strings.HasPrefix(msg, s.ClassName) {
		msg = strings.TrimSpace(msg[min(len(s.ClassName)+1, len(msg)):])
	}

	e := &Error{
		Constructor: ctor,
		ClassName:   s.ClassName,
		Message:     msg,
		Stack:       strings.Join(lines[1:], "\n"),
	}
	for _, p := range s.Properties() {
		if p == nil {
			continue
		}
		v, err := d.decode(&p.Summary, depth+1)
		if err != nil {
			return nil, xerrors.Errorf("error property %q: %w", p.Name, err)
		}
		e.define(p.Name, v)
	}
	return e, nil
}

func (d *Decoder) decodeArray(s *Summary, depth int) (Value, error) {
	props := s.Properties()
	arr := make(Array, 0, len(props))
	for i, p := range props {
		if p == nil {
			arr = append(arr, Undefined{})
			continue
		}
		v, err := d.decode(&p.Summary, depth+1)
		if err != nil {
			return nil, xerrors.Errorf("array element %d: %w", i, err)
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (d *Decoder) decodeObject(s *Summary, depth int) (Value, error) {
	var obj *Object
	if s.isNull() {
		if len(s.Properties()) > 0 {
			d.logger.Debugw("null object value has preview properties, ignoring them", "className", s.ClassName)
		}
		return Null{}, nil
	}
	if s.structured() {
		v, err := valueFromJSON(s.Value)
		if err != nil {
			d.logger.Debugw("structured object value is not valid JSON", "error", err)
		}
		switch v := v.(type) {
		case *Object:
			obj = v
		case Array:
			return d.assignElements(v, s, depth)
		}
	}
	if obj == nil {
		obj = d.registry.Instance(s.ClassName)
	}

	for _, p := range s.Properties() {
		if p == nil {
			continue
		}
		v, err := d.decode(&p.Summary, depth+1)
		if err != nil {
			return nil, xerrors.Errorf("property %q: %w", p.Name, err)
		}
		obj.Properties.Set(p.Name, v, true)
	}
	return obj, nil
}

// assignElements stores index-named preview properties into arr, growing
// it with undefined holes as needed. Other names have nowhere to go on an
// Array and are dropped.
func (d *Decoder) assignElements(arr Array, s *Summary, depth int) (Value, error) {
	for _, p := range s.Properties() {
		if p == nil {
			continue
		}
		v, err := d.decode(&p.Summary, depth+1)
		if err != nil {
			return nil, xerrors.Errorf("property %q: %w", p.Name, err)
		}
		i, err := strconv.ParseUint(p.Name, 10, 32)
		if err != nil || strconv.FormatUint(i, 10) != p.Name || i > maxArrayIndex {
			d.logger.Debugw("array value property is not an index, dropping it", "name", p.Name)
			continue
		}
		for uint64(len(arr)) <= i {
			arr = append(arr, Undefined{})
		}
		arr[i] = v
	}
	return arr, nil
}

// functionName pulls the name out of a function rendering such as
// "function foo(a) {...}" or "class Foo {...}".
func functionName(desc string) string {
	head, _, _ := strings.Cut(desc, "\n")
	for _, prefix := range []string{"async function*", "async function", "function*", "function", "class"} {
		if rest, ok := strings.CutPrefix(head, prefix); ok {
			head = rest
			break
		}
	}
	head = strings.TrimSpace(head)
	end := strings.IndexAny(head, "( {")
	if end < 0 {
		return ""
	}
	return head[:end]
}
