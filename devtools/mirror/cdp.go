package mirror

import (
	"encoding/json"

	"github.com/chromedp/cdproto/runtime"
)

// FromRemoteObject converts a cdproto RemoteObject into a Summary.
func FromRemoteObject(ro *runtime.RemoteObject) *Summary {
	if ro == nil {
		return nil
	}
	s := &Summary{
		Type:                Type(ro.Type),
		Subtype:             Subtype(ro.Subtype),
		ClassName:           ro.ClassName,
		UnserializableValue: string(ro.UnserializableValue),
		Description:         ro.Description,
		Preview:             fromObjectPreview(ro.Preview),
	}
	if len(ro.Value) > 0 {
		s.Value = json.RawMessage(ro.Value)
	}
	return s
}

func fromObjectPreview(p *runtime.ObjectPreview) *Preview {
	if p == nil {
		return nil
	}
	preview := &Preview{
		Description: p.Description,
		Overflow:    p.Overflow,
		Properties:  make([]*PropertySummary, 0, len(p.Properties)),
	}
	for _, prop := range p.Properties {
		if prop == nil {
			continue
		}
		preview.Properties = append(preview.Properties, fromPropertyPreview(prop))
	}
	return preview
}

// fromPropertyPreview keeps the textual value of a PropertyPreview, so the
// decoder takes its textual-producer paths for nested entries.
func fromPropertyPreview(p *runtime.PropertyPreview) *PropertySummary {
	prop := &PropertySummary{
		Name: p.Name,
		Summary: Summary{
			Type:    Type(p.Type),
			Subtype: Subtype(p.Subtype),
			Preview: fromObjectPreview(p.ValuePreview),
		},
	}
	if p.Type != runtime.TypeUndefined && p.Type != runtime.TypeAccessor {
		prop.Value, _ = json.Marshal(p.Value)
	}
	return prop
}
