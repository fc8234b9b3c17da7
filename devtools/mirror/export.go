package mirror

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Export converts v into plain Go values (nil, bool, float64, string,
// time.Time, []any, map[string]any) suitable for JSON or msgpack encoding.
// Numbers JSON cannot carry are exported as their JavaScript spelling.
func Export(v Value) any {
	switch v := v.(type) {
	case nil, Undefined, Null:
		return nil
	case Boolean:
		return bool(v)
	case Number:
		if s, special := specialNumber(v); special {
			return s
		}
		return float64(v)
	case *BigInt:
		return v.Int.String() + "n"
	case String:
		return string(v)
	case *Symbol:
		return formatSymbol(v)
	case *Function:
		return formatFunction(v)
	case *Date:
		return v.Time
	case *RegExp:
		return v.String()
	case *Error:
		m := map[string]any{
			"name":    v.Name(),
			"message": v.Message,
		}
		if v.Stack != "" {
			m["stack"] = v.Stack
		}
		for _, p := range v.Properties {
			m[p.Name] = Export(p.Value)
		}
		return m
	case *Map:
		return map[string]any{}
	case *Set:
		return []any{}
	case Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Export(elem)
		}
		return out
	case *Object:
		m := make(map[string]any, len(v.Properties))
		for _, p := range v.Properties {
			if p.Enumerable {
				m[p.Name] = Export(p.Value)
			}
		}
		return m
	}
	return nil
}

// Format renders v on one line the way a DevTools console would, using the
// class name for named instances.
func Format(v Value) string {
	var sb strings.Builder
	format(&sb, v, false)
	return sb.String()
}

func format(sb *strings.Builder, v Value, nested bool) {
	switch v := v.(type) {
	case nil, Undefined:
		sb.WriteString("undefined")
	case Null:
		sb.WriteString("null")
	case Boolean:
		sb.WriteString(strconv.FormatBool(bool(v)))
	case Number:
		sb.WriteString(formatNumber(v))
	case *BigInt:
		sb.WriteString(v.Int.String())
		sb.WriteByte('n')
	case String:
		if nested {
			sb.WriteString(quote(string(v)))
		} else {
			sb.WriteString(string(v))
		}
	case *Symbol:
		sb.WriteString(formatSymbol(v))
	case *Function:
		sb.WriteString(formatFunction(v))
	case *Date:
		sb.WriteString(v.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	case *RegExp:
		sb.WriteString(v.String())
	case *Error:
		sb.WriteString(v.Error())
		if v.Stack != "" && !nested {
			sb.WriteByte('\n')
			sb.WriteString(v.Stack)
		}
	case *Map:
		sb.WriteString("Map(0) {}")
	case *Set:
		sb.WriteString("Set(0) {}")
	case Array:
		if len(v) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[ ")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, elem, true)
		}
		sb.WriteString(" ]")
	case *Object:
		if name := v.TypeName(); name != "" {
			sb.WriteString(name)
			sb.WriteByte(' ')
		}
		first := true
		for _, p := range v.Properties {
			if !p.Enumerable {
				continue
			}
			if first {
				sb.WriteString("{ ")
				first = false
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(formatKey(p.Name))
			sb.WriteString(": ")
			format(sb, p.Value, true)
		}
		if first {
			sb.WriteString("{}")
		} else {
			sb.WriteString(" }")
		}
	}
}

func specialNumber(n Number) (string, bool) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	case n.IsNegativeZero():
		return "-0", true
	}
	return "", false
}

func formatNumber(n Number) string {
	if s, special := specialNumber(n); special {
		return s
	}
	f := float64(n)
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		// 1e-07 -> 1e-7
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatSymbol(s *Symbol) string {
	return "Symbol(" + s.Description + ")"
}

func formatFunction(f *Function) string {
	if f.Name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + f.Name + "]"
}

func formatKey(name string) string {
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return quote(name)
	}
	if name == "" {
		return "''"
	}
	return name
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`) + "'"
}
