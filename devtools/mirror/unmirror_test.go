package mirror

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func structured(typ Type, subtype Subtype, raw string) *Summary {
	return &Summary{Type: typ, Subtype: subtype, Value: json.RawMessage(raw)}
}

func object(className string, subtype Subtype, description string) *Summary {
	return &Summary{Type: TypeObject, Subtype: subtype, ClassName: className, Description: description}
}

func TestDecodeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary *Summary
		want    Value
	}{
		{"text", TextSummary(TypeString, "", "hello"), String("hello")},
		{"empty", TextSummary(TypeString, "", ""), String("")},
		{"unicode", TextSummary(TypeString, "", "héllo\n✓"), String("héllo\n✓")},
		{"absent", &Summary{Type: TypeString}, Undefined{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(tt.summary)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeBoolean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary *Summary
		want    Boolean
	}{
		{"structured_true", structured(TypeBoolean, "", "true"), true},
		{"structured_false", structured(TypeBoolean, "", "false"), false},
		{"text_true", TextSummary(TypeBoolean, "", "true"), true},
		{"text_false", TextSummary(TypeBoolean, "", "false"), false},
		{"text_upper", TextSummary(TypeBoolean, "", "TRUE"), false},
		{"number_one", structured(TypeBoolean, "", "1"), false},
		{"absent", &Summary{Type: TypeBoolean}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(tt.summary)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary *Summary
		check   func(t *testing.T, v Value)
	}{
		{"structured", structured(TypeNumber, "", "42"), func(t *testing.T, v Value) {
			assert.Equal(t, Number(42), v)
		}},
		{"nan", TextSummary(TypeNumber, "", "NaN"), func(t *testing.T, v Value) {
			require.IsType(t, Number(0), v)
			assert.True(t, math.IsNaN(float64(v.(Number))))
		}},
		{"negative_infinity", TextSummary(TypeNumber, "", "-Infinity"), func(t *testing.T, v Value) {
			assert.Equal(t, Number(math.Inf(-1)), v)
		}},
		{"infinity", TextSummary(TypeNumber, "", "Infinity"), func(t *testing.T, v Value) {
			assert.Equal(t, Number(math.Inf(1)), v)
		}},
		{"negative_zero", TextSummary(TypeNumber, "", "-0"), func(t *testing.T, v Value) {
			require.IsType(t, Number(0), v)
			assert.True(t, v.(Number).IsNegativeZero())
		}},
		{"unserializable_negative_zero", &Summary{Type: TypeNumber, UnserializableValue: "-0"}, func(t *testing.T, v Value) {
			require.IsType(t, Number(0), v)
			assert.True(t, v.(Number).IsNegativeZero())
		}},
		{"text_decimal", TextSummary(TypeNumber, "", "1.5"), func(t *testing.T, v Value) {
			assert.Equal(t, Number(1.5), v)
		}},
		{"text_exponent_overflow", TextSummary(TypeNumber, "", "1e400"), func(t *testing.T, v Value) {
			assert.Equal(t, Number(math.Inf(1)), v)
		}},
		{"text_malformed", TextSummary(TypeNumber, "", "12px"), func(t *testing.T, v Value) {
			assert.Equal(t, String("12px"), v)
		}},
		{"absent", &Summary{Type: TypeNumber}, func(t *testing.T, v Value) {
			assert.Equal(t, Undefined{}, v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(tt.summary)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestDecodeBigInt(t *testing.T) {
	t.Parallel()

	got, err := NewDecoder().Decode(&Summary{Type: TypeBigint, UnserializableValue: "12345678901234567890123n"})
	require.NoError(t, err)
	require.IsType(t, &BigInt{}, got)
	assert.Equal(t, "12345678901234567890123", got.(*BigInt).Int.String())

	// PropertyPreview spelling
	got, err = NewDecoder().Decode(TextSummary(TypeBigint, "", "-7n"))
	require.NoError(t, err)
	assert.Equal(t, "-7", got.(*BigInt).Int.String())
}

func TestDecodeSymbol(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	s := &Summary{Type: TypeSymbol, Description: "Symbol(foo)"}

	first, err := d.Decode(s)
	require.NoError(t, err)
	second, err := d.Decode(s)
	require.NoError(t, err)

	require.IsType(t, &Symbol{}, first)
	assert.Equal(t, "foo", first.(*Symbol).Description)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second, "each decode makes a new symbol")

	anon, err := d.Decode(&Summary{Type: TypeSymbol, Description: "Symbol()"})
	require.NoError(t, err)
	assert.True(t, anon.(*Symbol).Anonymous())

	nested, err := d.Decode(&Summary{Type: TypeSymbol, Description: "Symbol(Symbol(x))"})
	require.NoError(t, err)
	assert.Equal(t, "Symbol(x)", nested.(*Symbol).Description)

	unsupported, err := NewDecoder(WithoutSymbols()).Decode(s)
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, unsupported)
}

func TestDecodeFunctionAndUndefined(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	fn, err := d.Decode(&Summary{Type: TypeFunction, ClassName: "Function", Description: "function foo(a) { return a }"})
	require.NoError(t, err)
	require.IsType(t, &Function{}, fn)
	assert.Equal(t, "foo", fn.(*Function).Name)
	assert.Equal(t, Undefined{}, fn.(*Function).Call(Number(1)))

	arrow, err := d.Decode(&Summary{Type: TypeFunction, Description: "(a) => a"})
	require.NoError(t, err)
	assert.Equal(t, "", arrow.(*Function).Name)

	undef, err := d.Decode(&Summary{Type: TypeUndefined})
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, undef)

	nilSummary, err := d.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, nilSummary)
}

func TestDecodeSimpleSubtypes(t *testing.T) {
	t.Parallel()

	d := NewDecoder()

	null, err := d.Decode(object("", SubtypeNull, ""))
	require.NoError(t, err)
	assert.Equal(t, Null{}, null)

	node, err := d.Decode(object("HTMLDivElement", SubtypeNode, "div#main"))
	require.NoError(t, err)
	assert.Equal(t, String("HTMLDivElement"), node)
}

func TestDecodeDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		description string
	}{
		{"to_string", "Mon Oct 19 2026 10:00:00 GMT+0200 (Central European Summer Time)"},
		{"to_string_no_zone_name", "Mon Oct 19 2026 08:00:00 GMT+0000"},
		{"iso", "2026-10-19T08:00:00.000Z"},
		{"utc_string", "Mon, 19 Oct 2026 08:00:00 GMT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(object("Date", SubtypeDate, tt.description))
			require.NoError(t, err)
			require.IsType(t, &Date{}, got)
			assert.True(t, want.Equal(got.(*Date).Time), "got %v", got.(*Date).Time)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := NewDecoder().Decode(object("Date", SubtypeDate, "Invalid Date"))
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ErrMalformedInput))
	})
}

func TestDecodeRegExp(t *testing.T) {
	t.Parallel()

	t.Run("structured_preview", func(t *testing.T) {
		t.Parallel()

		s := object("RegExp", SubtypeRegexp, "/ab+c/gm").WithPreview(
			NewProperty("source", TextSummary(TypeString, "", "ab+c")),
			NewProperty("multiline", TextSummary(TypeBoolean, "", "true")),
			NewProperty("ignoreCase", TextSummary(TypeBoolean, "", "false")),
			NewProperty("global", TextSummary(TypeBoolean, "", "true")),
			NewProperty("lastIndex", TextSummary(TypeNumber, "", "3")),
		)
		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		require.IsType(t, &RegExp{}, got)

		re := got.(*RegExp)
		assert.Equal(t, "ab+c", re.Source)
		assert.Equal(t, "gm", re.Flags)
		assert.Equal(t, 3, re.LastIndex)
		ok, err := re.MatchString("xabbbcx")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("textual_description", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, "/ab+c/gm"))
		require.NoError(t, err)

		want, err := NewRegExp("ab+c", "gm")
		require.NoError(t, err)
		re := got.(*RegExp)
		assert.Equal(t, want.Source, re.Source)
		assert.Equal(t, want.Flags, re.Flags)
		assert.Equal(t, 0, re.LastIndex)
	})

	t.Run("textual_keeps_last_index", func(t *testing.T) {
		t.Parallel()

		s := object("RegExp", SubtypeRegexp, "/a/g").WithPreview(
			NewProperty("lastIndex", TextSummary(TypeNumber, "", "7")),
		)
		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		assert.Equal(t, 7, got.(*RegExp).LastIndex)
		assert.Equal(t, "g", got.(*RegExp).Flags)
	})

	t.Run("ecmascript_syntax", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, `/(\w)\1(?=x)/i`))
		require.NoError(t, err)
		ok, err := got.(*RegExp).MatchString("AAx")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("flags_change_matching", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			description string
			input       string
			want        bool
		}{
			{`/a.b/`, "a\nb", false},
			{`/a.b/s`, "a\nb", true},
			{`/^\u{1F600}$/u`, "\U0001F600", true},
			{`/^b/m`, "a\nb", true},
			{`/B/i`, "abc", true},
		}
		for _, tt := range tests {
			got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, tt.description))
			require.NoError(t, err, tt.description)
			ok, err := got.(*RegExp).MatchString(tt.input)
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.want, ok, tt.description)
		}
	})

	t.Run("empty_description", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, ""))
		require.NoError(t, err)
		assert.Equal(t, "", got.(*RegExp).Source)
		assert.Equal(t, "", got.(*RegExp).Flags)
		assert.Equal(t, "/(?:)/", got.(*RegExp).String())
	})

	t.Run("delimiter_only", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, "/"))
		require.NoError(t, err)
		assert.Equal(t, "", got.(*RegExp).Source)
	})

	t.Run("delimiter_in_pattern", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, `/a\/b/g`))
		require.NoError(t, err)
		assert.Equal(t, `a\/b`, got.(*RegExp).Source)
		assert.Equal(t, "g", got.(*RegExp).Flags)
	})

	t.Run("malformed_pattern", func(t *testing.T) {
		t.Parallel()

		_, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, "/a(/g"))
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ErrMalformedInput))
	})

	t.Run("invalid_flags", func(t *testing.T) {
		t.Parallel()

		_, err := NewDecoder().Decode(object("RegExp", SubtypeRegexp, "/a/gg"))
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ErrMalformedInput))
	})
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	t.Run("type_error", func(t *testing.T) {
		t.Parallel()

		s := object("TypeError", SubtypeError, "TypeError: bad arg\nat foo (file:1:1)").WithPreview(
			NewProperty("code", TextSummary(TypeString, "", "E_BAD")),
		)
		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		require.IsType(t, &Error{}, got)

		e := got.(*Error)
		assert.Equal(t, TypeErrorCtor, e.Constructor)
		assert.Equal(t, "bad arg", e.Message)
		assert.Equal(t, "at foo (file:1:1)", e.Stack)
		assert.Equal(t, "TypeError: bad arg", e.Error())

		code, ok := e.Properties.Get("code")
		require.True(t, ok)
		assert.Equal(t, String("E_BAD"), code)
		assert.False(t, e.Properties[0].Enumerable)
	})

	t.Run("multi_line_stack", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("RangeError", SubtypeError, "RangeError: too far\n    at a (x.js:1:1)\n    at b (x.js:2:2)"))
		require.NoError(t, err)
		e := got.(*Error)
		assert.Equal(t, RangeErrorCtor, e.Constructor)
		assert.Equal(t, "too far", e.Message)
		assert.Equal(t, "    at a (x.js:1:1)\n    at b (x.js:2:2)", e.Stack)
	})

	t.Run("unknown_class", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("ValidationError", SubtypeError, "ValidationError: nope"))
		require.NoError(t, err)
		e := got.(*Error)
		assert.Equal(t, ErrorCtor, e.Constructor)
		assert.Equal(t, "ValidationError", e.Name())
		assert.Equal(t, "nope", e.Message)
		assert.Equal(t, "", e.Stack)
	})

	t.Run("internal_error", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("InternalError", SubtypeError, "InternalError: too much recursion"))
		require.NoError(t, err)
		assert.Equal(t, ErrorCtor, got.(*Error).Constructor)
		assert.Equal(t, "too much recursion", got.(*Error).Message)
	})

	t.Run("no_class_name", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("", SubtypeError, "boom"))
		require.NoError(t, err)
		e := got.(*Error)
		assert.Equal(t, "boom", e.Message)
		assert.Equal(t, "Error", e.Name())
	})

	t.Run("class_name_only", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("Error", SubtypeError, "Error"))
		require.NoError(t, err)
		assert.Equal(t, "", got.(*Error).Message)
	})

	t.Run("message_property_overrides", func(t *testing.T) {
		t.Parallel()

		s := object("Error", SubtypeError, "Error: short").WithPreview(
			NewProperty("message", TextSummary(TypeString, "", "full message")),
		)
		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		assert.Equal(t, "full message", got.(*Error).Message)
		assert.Empty(t, got.(*Error).Properties)
	})
}

func TestDecodeCollections(t *testing.T) {
	t.Parallel()

	entries := []*PropertySummary{
		NewProperty("size", TextSummary(TypeNumber, "", "2")),
		NewProperty("0", TextSummary(TypeString, "", "a")),
	}

	m, err := NewDecoder().Decode(object("Map", SubtypeMap, "Map(2)").WithPreview(entries...))
	require.NoError(t, err)
	assert.Equal(t, &Map{}, m)

	s, err := NewDecoder().Decode(object("Set", SubtypeSet, "Set(2)").WithPreview(entries...))
	require.NoError(t, err)
	assert.Equal(t, &Set{}, s)

	d := NewDecoder(WithoutCollections())
	m, err = d.Decode(object("Map", SubtypeMap, "Map(0)"))
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, m)
	s, err = d.Decode(object("Set", SubtypeSet, "Set(0)"))
	require.NoError(t, err)
	assert.Equal(t, Undefined{}, s)
}

func TestDecodeArray(t *testing.T) {
	t.Parallel()

	props := []*PropertySummary{
		NewProperty("0", TextSummary(TypeNumber, "", "1")),
		NewProperty("1", TextSummary(TypeString, "", "a")),
		NewProperty("2", TextSummary(TypeBoolean, "", "true")),
		NewProperty("3", object("", SubtypeNull, "")),
	}
	s := object("Array", SubtypeArray, "Array(4)").WithPreview(props...)

	d := NewDecoder()
	got, err := d.Decode(s)
	require.NoError(t, err)
	require.IsType(t, Array{}, got)

	arr := got.(Array)
	require.Len(t, arr, len(props))
	for i, p := range props {
		want, err := d.Decode(&p.Summary)
		require.NoError(t, err)
		assert.Equal(t, want, arr[i])
	}

	empty, err := d.Decode(object("Array", SubtypeArray, "Array(0)"))
	require.NoError(t, err)
	assert.Equal(t, Array{}, empty)
}

func TestDecodeObject(t *testing.T) {
	t.Parallel()

	t.Run("named_instance", func(t *testing.T) {
		t.Parallel()

		d := NewDecoder()
		s := object("Point", SubtypeNone, "Point").WithPreview(
			NewProperty("x", TextSummary(TypeNumber, "", "1")),
			NewProperty("y", TextSummary(TypeNumber, "", "2")),
		)
		got, err := d.Decode(s)
		require.NoError(t, err)
		require.IsType(t, &Object{}, got)

		obj := got.(*Object)
		assert.Equal(t, "Point", obj.TypeName())
		assert.Equal(t, []string{"x", "y"}, obj.Properties.Names())
		y, _ := obj.Properties.Get("y")
		assert.Equal(t, Number(2), y)

		again, err := d.Decode(s)
		require.NoError(t, err)
		assert.NotSame(t, obj, again)
		assert.Same(t, obj.Class, again.(*Object).Class)
		assert.Equal(t, 1, d.Registry().Len())
	})

	t.Run("plain_object", func(t *testing.T) {
		t.Parallel()

		d := NewDecoder()
		for _, className := range []string{"", "Object"} {
			got, err := d.Decode(object(className, SubtypeNone, "Object").WithPreview(
				NewProperty("a", TextSummary(TypeString, "", "x")),
			))
			require.NoError(t, err)
			obj := got.(*Object)
			assert.Nil(t, obj.Class)
			assert.Equal(t, "", obj.TypeName())
		}
		assert.Equal(t, 0, d.Registry().Len())
	})

	t.Run("structured_value", func(t *testing.T) {
		t.Parallel()

		s := &Summary{Type: TypeObject, ClassName: "Object", Value: json.RawMessage(`{"b":1,"a":[true,null]}`)}
		s.WithPreview(NewProperty("c", TextSummary(TypeString, "", "z")))

		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		obj := got.(*Object)
		assert.Equal(t, []string{"b", "a", "c"}, obj.Properties.Names())
		a, _ := obj.Properties.Get("a")
		assert.Equal(t, Array{Boolean(true), Null{}}, a)
	})

	t.Run("duplicate_names_overwrite", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(object("", SubtypeNone, "Object").WithPreview(
			NewProperty("a", TextSummary(TypeNumber, "", "1")),
			NewProperty("b", TextSummary(TypeNumber, "", "2")),
			NewProperty("a", TextSummary(TypeNumber, "", "3")),
		))
		require.NoError(t, err)
		obj := got.(*Object)
		assert.Equal(t, []string{"a", "b"}, obj.Properties.Names())
		a, _ := obj.Properties.Get("a")
		assert.Equal(t, Number(3), a)
	})

	t.Run("nil_property_entry", func(t *testing.T) {
		t.Parallel()

		s := object("", SubtypeNone, "Object").WithPreview(nil, NewProperty("a", TextSummary(TypeString, "", "x")))
		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got.(*Object).Properties.Names())
	})

	t.Run("structured_array_value", func(t *testing.T) {
		t.Parallel()

		s := &Summary{Type: TypeObject, ClassName: "Array", Value: json.RawMessage(`[1,2]`)}
		s.WithPreview(
			NewProperty("1", TextSummary(TypeString, "", "b")),
			NewProperty("3", TextSummary(TypeString, "", "d")),
			NewProperty("length", TextSummary(TypeNumber, "", "4")),
			NewProperty("01", TextSummary(TypeString, "", "x")),
		)

		got, err := NewDecoder().Decode(s)
		require.NoError(t, err)
		assert.Equal(t, Array{Number(1), String("b"), Undefined{}, String("d")}, got)
	})

	t.Run("null_value", func(t *testing.T) {
		t.Parallel()

		d := NewDecoder()
		s := &Summary{Type: TypeObject, ClassName: "Point", Value: json.RawMessage(`null`)}
		got, err := d.Decode(s)
		require.NoError(t, err)
		assert.Equal(t, Null{}, got)
		assert.Equal(t, 0, d.Registry().Len())
	})
}

func TestDecodeIsIdempotent(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	s := object("Config", SubtypeNone, "Config").WithPreview(
		NewProperty("name", TextSummary(TypeString, "", "svc")),
		NewProperty("ports", object("Array", SubtypeArray, "Array(2)").WithPreview(
			NewProperty("0", TextSummary(TypeNumber, "", "80")),
			NewProperty("1", TextSummary(TypeNumber, "", "443")),
		)),
		NewProperty("err", object("Error", SubtypeError, "Error: x\nat y")),
	)

	first, err := d.Decode(s)
	require.NoError(t, err)
	second, err := d.Decode(s)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("decodes differ (-first +second):\n%s", diff)
	}
	assert.NotSame(t, first, second)
	errFirst, _ := first.(*Object).Properties.Get("err")
	errSecond, _ := second.(*Object).Properties.Get("err")
	assert.NotSame(t, errFirst, errSecond)
}

func TestDecodeMaxDepth(t *testing.T) {
	t.Parallel()

	leaf := TextSummary(TypeString, "", "deep")
	s := leaf
	for i := 0; i < 4; i++ {
		s = object("", SubtypeNone, "Object").WithPreview(NewProperty("child", s))
	}

	_, err := NewDecoder(WithMaxDepth(2)).Decode(s)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrDepthExceeded))

	got, err := NewDecoder(WithMaxDepth(4)).Decode(s)
	require.NoError(t, err)
	assert.Equal(t, "{ child: { child: { child: { child: 'deep' } } } }", Format(got))
}

func TestDecodeJSONSummary(t *testing.T) {
	t.Parallel()

	const payload = `{
		"type": "object", "className": "Point", "description": "Point",
		"preview": {"type": "object", "description": "Point", "overflow": false, "properties": [
			{"name": "x", "type": "number", "value": "1"},
			{"name": "tags", "type": "object", "subtype": "array", "value": "Array(2)",
				"valuePreview": {"type": "object", "subtype": "array", "description": "Array(2)", "overflow": false,
					"properties": [{"name": "0", "type": "string", "value": "a"}, {"name": "1", "type": "string", "value": "b"}]}},
			{"name": "when", "type": "object", "subtype": "date", "value": "Mon Oct 19 2026 10:00:00 GMT+0200 (Central European Summer Time)"},
			{"name": "re", "type": "object", "subtype": "regexp", "value": "/x+/g"},
			{"name": "nested", "type": "object", "value": "Object"},
			{"name": "missing", "type": "undefined"}
		]}
	}`

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(payload), &s))
	require.Len(t, s.Properties(), 6)
	require.NotNil(t, s.Properties()[1].Preview)

	got, err := NewDecoder().Decode(&s)
	require.NoError(t, err)
	obj := got.(*Object)
	assert.Equal(t, "Point", obj.TypeName())

	tags, _ := obj.Properties.Get("tags")
	assert.Equal(t, Array{String("a"), String("b")}, tags)

	when, _ := obj.Properties.Get("when")
	require.IsType(t, &Date{}, when)
	assert.True(t, time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC).Equal(when.(*Date).Time))

	re, _ := obj.Properties.Get("re")
	assert.Equal(t, "/x+/g", re.(*RegExp).String())

	nested, _ := obj.Properties.Get("nested")
	assert.Equal(t, &Object{}, nested)

	missing, _ := obj.Properties.Get("missing")
	assert.Equal(t, Undefined{}, missing)
}

func TestUnmirrorUsesDefaultRegistry(t *testing.T) {
	t.Parallel()

	const className = "UnmirrorDefaultRegistryProbe"
	got, err := Unmirror(object(className, SubtypeNone, className))
	require.NoError(t, err)

	class, ok := DefaultRegistry.Lookup(className)
	require.True(t, ok)
	assert.Same(t, class, got.(*Object).Class)
}
