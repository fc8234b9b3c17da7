package mirror

// Type is the category tag of a remote object.
type Type string

const (
	TypeObject    Type = "object"
	TypeFunction  Type = "function"
	TypeUndefined Type = "undefined"
	TypeString    Type = "string"
	TypeNumber    Type = "number"
	TypeBoolean   Type = "boolean"
	TypeSymbol    Type = "symbol"
	TypeBigint    Type = "bigint"
	TypeAccessor  Type = "accessor" // PropertyPreview only
)

// Subtype refines TypeObject.
type Subtype string

const (
	SubtypeNone   Subtype = ""
	SubtypeNull   Subtype = "null"
	SubtypeDate   Subtype = "date"
	SubtypeNode   Subtype = "node"
	SubtypeRegexp Subtype = "regexp"
	SubtypeError  Subtype = "error"
	SubtypeMap    Subtype = "map"
	SubtypeSet    Subtype = "set"
	SubtypeArray  Subtype = "array"
)

// ErrorConstructor names the built-in error constructor a remote error is
// rebuilt with.
type ErrorConstructor string

const (
	ErrorCtor          ErrorConstructor = "Error"
	EvalErrorCtor      ErrorConstructor = "EvalError"
	RangeErrorCtor     ErrorConstructor = "RangeError"
	ReferenceErrorCtor ErrorConstructor = "ReferenceError"
	SyntaxErrorCtor    ErrorConstructor = "SyntaxError"
	TypeErrorCtor      ErrorConstructor = "TypeError"
	URIErrorCtor       ErrorConstructor = "URIError"
)

// errorConstructors maps a remote className to the constructor used locally.
// InternalError is a SpiderMonkey extension with no standard counterpart.
var errorConstructors = map[string]ErrorConstructor{
	"Error":          ErrorCtor,
	"EvalError":      EvalErrorCtor,
	"InternalError":  ErrorCtor,
	"RangeError":     RangeErrorCtor,
	"ReferenceError": ReferenceErrorCtor,
	"SyntaxError":    SyntaxErrorCtor,
	"TypeError":      TypeErrorCtor,
	"URIError":       URIErrorCtor,
}

// LookupErrorConstructor returns the constructor for className and whether
// the name was known. Unknown names resolve to ErrorCtor.
func LookupErrorConstructor(className string) (ErrorConstructor, bool) {
	ctor, ok := errorConstructors[className]
	if !ok {
		return ErrorCtor, false
	}
	return ctor, true
}

// regexpFlagProps lists the boolean RegExp preview properties in canonical
// flag order (the order RegExp.prototype.flags uses).
var regexpFlagProps = []struct {
	name string
	flag byte
}{
	{"hasIndices", 'd'},
	{"global", 'g'},
	{"ignoreCase", 'i'},
	{"multiline", 'm'},
	{"dotAll", 's'},
	{"unicode", 'u'},
	{"unicodeSets", 'v'},
	{"sticky", 'y'},
}

const validRegexpFlags = "dgimsuvy"

const defaultMaxDepth = 100

// maxArrayIndex bounds the holes an index-named preview property can open
// in a structured array value.
const maxArrayIndex = 1 << 20
