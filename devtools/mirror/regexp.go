package mirror

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/xerrors"
)

// decodeRegExp accepts both producer formats. Runtime and Debugger domain
// previews carry source, lastIndex and one boolean per flag; the Console
// domain only sends the literal in the description.
func (d *Decoder) decodeRegExp(s *Summary, depth int) (Value, error) {
	var (
		source    *string
		lastIndex int
		flagSet   = make(map[byte]bool)
	)
	for _, p := range s.Properties() {
		if p == nil {
			continue
		}
		switch p.Name {
		case "source":
			if str, ok := p.text(); ok {
				source = &str
			}
		case "lastIndex":
			v, err := d.decode(&p.Summary, depth+1)
			if err != nil {
				return nil, xerrors.Errorf("regexp lastIndex: %w", err)
			}
			if n, ok := v.(Number); ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0) {
				lastIndex = int(n)
			}
		default:
			for _, fp := range regexpFlagProps {
				if fp.name != p.Name {
					continue
				}
				v, err := d.decode(&p.Summary, depth+1)
				if err != nil {
					return nil, xerrors.Errorf("regexp flag %s: %w", p.Name, err)
				}
				if b, ok := v.(Boolean); ok && bool(b) {
					flagSet[fp.flag] = true
				}
			}
		}
	}

	var flags strings.Builder
	for _, fp := range regexpFlagProps {
		if flagSet[fp.flag] {
			flags.WriteByte(fp.flag)
		}
	}

	pattern, flagStr := "", flags.String()
	if source != nil {
		pattern = *source
	} else {
		pattern, flagStr = splitRegexpLiteral(s.describe())
	}

	re, err := compileRegExp(pattern, flagStr)
	if err != nil {
		return nil, err
	}
	return &RegExp{Source: pattern, Flags: flagStr, LastIndex: lastIndex, re: re}, nil
}

// splitRegexpLiteral splits "/pattern/flags". The first character is taken
// as the delimiter and the pattern ends at its last occurrence, so a flag
// string containing the delimiter mis-splits.
func splitRegexpLiteral(desc string) (pattern, flags string) {
	if desc == "" {
		return "", ""
	}
	delim, size := utf8.DecodeRuneInString(desc)
	i := strings.LastIndex(desc, string(delim))
	if i < size {
		return "", desc[size:]
	}
	return desc[size:i], desc[i+size:]
}

// NewRegExp compiles pattern with ECMAScript semantics.
func NewRegExp(pattern, flags string) (*RegExp, error) {
	re, err := compileRegExp(pattern, flags)
	if err != nil {
		return nil, err
	}
	return &RegExp{Source: pattern, Flags: flags, re: re}, nil
}

func compileRegExp(pattern, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		if strings.IndexByte(validRegexpFlags, f) < 0 || strings.IndexByte(flags[i+1:], f) >= 0 {
			return nil, xerrors.Errorf("regexp flags %q: %w", flags, ErrMalformedInput)
		}
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, xerrors.Errorf("regexp /%s/%s: %v: %w", pattern, flags, err, ErrMalformedInput)
	}
	return re, nil
}
