package mirror

import (
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// dateLayouts are the renderings a remote Date description comes in:
// Date.prototype.toString (the timezone name in parentheses is cut first),
// toISOString, toUTCString and the date-only ISO form.
var dateLayouts = []struct {
	layout string
	local  bool
}{
	{"Mon Jan 02 2006 15:04:05 GMT-0700", false},
	{time.RFC3339Nano, false},
	{"Mon, 02 Jan 2006 15:04:05 GMT", false},
	{"2006-01-02", false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
}

func parseDate(desc string) (time.Time, error) {
	text := strings.TrimSpace(desc)
	if i := strings.Index(text, " ("); i >= 0 && strings.HasSuffix(text, ")") {
		text = text[:i]
	}
	for _, l := range dateLayouts {
		loc := time.UTC
		if l.local {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(l.layout, text, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, xerrors.Errorf("date %q: %w", desc, ErrMalformedInput)
}
