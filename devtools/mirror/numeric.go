package mirror

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"golang.org/x/xerrors"
)

// ParseNumericText interprets the textual encoding of a number. A nil text
// yields fallback. Otherwise the text is parsed as a JSON literal; if that
// fails the text itself comes back as a String, so callers may receive a
// non-number for malformed input.
func ParseNumericText(text *string, fallback Value) Value {
	if text == nil {
		return fallback
	}
	v, err := valueFromJSON([]byte(*text))
	if err != nil {
		return String(*text)
	}
	return v
}

// valueFromJSON decodes a single JSON document into a Value, keeping object
// key order.
func valueFromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, xerrors.Errorf("trailing data after JSON value: %w", ErrMalformedInput)
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Boolean(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return jsonNumber(t)
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := &Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				elem, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Properties.Set(key, elem, true)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, xerrors.Errorf("unexpected JSON token %v: %w", tok, ErrMalformedInput)
}

// jsonNumber converts a JSON number literal. Literals beyond float64 range
// become infinities (or zero), as JSON.parse does.
func jsonNumber(n json.Number) (Value, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		var numErr *strconv.NumError
		if xerrors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return Number(f), nil
		}
		return nil, err
	}
	return Number(f), nil
}
