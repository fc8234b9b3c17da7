package mirror

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Summary is the wire description of a value living in a remote runtime. It
// covers both Runtime.RemoteObject and the older Console domain rendering,
// where numbers, regexps and dates arrive as text.
type Summary struct {
	Type                Type            `json:"type"`
	Subtype             Subtype         `json:"subtype,omitempty"`
	ClassName           string          `json:"className,omitempty"`
	Value               json.RawMessage `json:"value,omitempty"`
	UnserializableValue string          `json:"unserializableValue,omitempty"`
	Description         string          `json:"description,omitempty"`
	Preview             *Preview        `json:"preview,omitempty"`
}

// Preview is the shallow property listing attached to a summary.
type Preview struct {
	Description string             `json:"description,omitempty"`
	Overflow    bool               `json:"overflow,omitempty"`
	Properties  []*PropertySummary `json:"properties,omitempty"`
}

// PropertySummary is one named entry of a Preview. Its value is itself a
// summary; the nested preview is spelled valuePreview on the wire.
type PropertySummary struct {
	Name string `json:"name"`
	Summary
}

// UnmarshalJSON accepts both "preview" and "valuePreview" for the nested
// preview.
func (p *PropertySummary) UnmarshalJSON(data []byte) error {
	type plain PropertySummary
	var aux struct {
		plain
		ValuePreview *Preview `json:"valuePreview,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PropertySummary(aux.plain)
	if p.Preview == nil {
		p.Preview = aux.ValuePreview
	}
	return nil
}

// Properties returns the preview properties, or nil when there is no preview.
func (s *Summary) Properties() []*PropertySummary {
	if s.Preview == nil {
		return nil
	}
	return s.Preview.Properties
}

// hasValue reports whether a value field was sent at all. An explicit JSON
// null counts as absent.
func (s *Summary) hasValue() bool {
	return len(s.Value) > 0 && string(s.Value) != "null"
}

// text returns the value when it was sent as a JSON string (textual
// producer).
func (s *Summary) text() (string, bool) {
	if len(s.Value) == 0 || s.Value[0] != '"' {
		return "", false
	}
	var str string
	if err := json.Unmarshal(s.Value, &str); err != nil {
		return "", false
	}
	return str, true
}

// number returns the value when it was sent as a JSON number (structured
// producer).
func (s *Summary) number() (float64, bool) {
	if !s.hasValue() {
		return 0, false
	}
	c := s.Value[0]
	if c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(s.Value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// structured reports whether the value was sent as a JSON object or array.
func (s *Summary) structured() bool {
	return len(s.Value) > 0 && (s.Value[0] == '{' || s.Value[0] == '[')
}

// isNull reports whether the value is JSON null.
func (s *Summary) isNull() bool {
	return string(bytes.TrimSpace(s.Value)) == "null"
}

// numericText returns the textual encoding of a number: the string value,
// or unserializableValue when no value was sent.
func (s *Summary) numericText() *string {
	if str, ok := s.text(); ok {
		return &str
	}
	if s.UnserializableValue != "" {
		str := s.UnserializableValue
		return &str
	}
	if s.hasValue() {
		str := string(s.Value)
		return &str
	}
	return nil
}

// describe returns the description, falling back to a textual value.
// PropertyPreview entries carry their rendering in value.
func (s *Summary) describe() string {
	if s.Description != "" {
		return s.Description
	}
	str, _ := s.text()
	return str
}

// TextSummary builds a summary the way a textual producer sends it.
func TextSummary(typ Type, subtype Subtype, value string) *Summary {
	raw, _ := json.Marshal(value)
	return &Summary{Type: typ, Subtype: subtype, Value: raw}
}

// NewProperty builds a named preview entry.
func NewProperty(name string, s *Summary) *PropertySummary {
	return &PropertySummary{Name: name, Summary: *s}
}

// WithPreview attaches properties to s and returns it.
func (s *Summary) WithPreview(props ...*PropertySummary) *Summary {
	s.Preview = &Preview{Properties: props}
	return s
}
