package pages

import (
	"fmt"

	"github.com/tsawler/crsheet/core"
	"github.com/tsawler/crsheet/font"
)

// Annotation subtypes the tool cares about
const (
	SubtypeFreeText = "FreeText"
	SubtypeText     = "Text"
)

// infoKeys maps annotation dictionary entries to Annotation.Info keys
var infoKeys = []struct{ entry, key string }{
	{"Contents", "content"},
	{"T", "title"},
	{"Subj", "subject"},
	{"Name", "name"},
	{"NM", "id"},
	{"CreationDate", "creationDate"},
	{"M", "modDate"},
}

// Annotation is one entry of a page's /Annots array
type Annotation struct {
	Ref     core.IndirectRef
	Subtype string
	Dict    core.Dict
	// Info holds decoded text entries. A key is present only when the
	// corresponding entry exists in the dictionary.
	Info map[string]string
}

// Content returns the decoded /Contents and whether it was present
func (a Annotation) Content() (string, bool) {
	s, ok := a.Info["content"]
	return s, ok
}

// Rect returns the annotation rectangle, if it has a well-formed one
func (a Annotation) Rect() ([]float64, bool) {
	arr, ok := a.Dict.GetArray("Rect")
	if !ok || len(arr) != 4 {
		return nil, false
	}
	out := make([]float64, 4)
	for i := range arr {
		v, ok := arr.GetNumber(i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Annotations returns the page's annotations in /Annots order. Entries that
// do not resolve to a dictionary are skipped; a page without /Annots has
// none.
func (p *Page) Annotations() ([]Annotation, error) {
	obj, err := p.resolver.Resolve(p.dict.Get("Annots"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Annots: %w", err)
	}
	arr, ok := obj.(core.Array)
	if !ok {
		return []Annotation{}, nil
	}

	annots := make([]Annotation, 0, len(arr))
	for _, entry := range arr {
		ref, _ := entry.(core.IndirectRef)
		resolved, err := p.resolver.Resolve(entry)
		if err != nil {
			continue
		}
		dict, ok := resolved.(core.Dict)
		if !ok {
			continue
		}

		a := Annotation{Ref: ref, Dict: dict, Info: make(map[string]string)}
		if subtype, ok := dict.GetName("Subtype"); ok {
			a.Subtype = string(subtype)
		}
		for _, k := range infoKeys {
			v, err := p.resolver.Resolve(dict.Get(k.entry))
			if err != nil {
				continue
			}
			switch s := v.(type) {
			case core.String:
				a.Info[k.key] = font.DecodeTextString([]byte(s))
			case core.Name:
				a.Info[k.key] = string(s)
			}
		}
		annots = append(annots, a)
	}
	return annots, nil
}
