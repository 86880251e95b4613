package pages

import (
	"fmt"

	"github.com/tsawler/crsheet/core"
)

// Page is a leaf of the page tree together with its inherited attributes
type Page struct {
	// Ref is the page object's reference; zero for a direct page dictionary
	Ref core.IndirectRef
	// Number is the 1-based position of the page in the document
	Number int

	dict     core.Dict
	attrs    core.Dict
	resolver ObjectResolver
}

func newPage(dict core.Dict, ref core.IndirectRef, attrs core.Dict, number int, resolver ObjectResolver) *Page {
	return &Page{Ref: ref, Number: number, dict: dict, attrs: attrs, resolver: resolver}
}

// NewPage creates a page from its dictionary, without inherited attributes
func NewPage(dict core.Dict, resolver ObjectResolver) *Page {
	attrs := make(core.Dict)
	for _, key := range inheritable {
		if v := dict.Get(key); v != nil {
			attrs[key] = v
		}
	}
	return newPage(dict, core.IndirectRef{}, attrs, 1, resolver)
}

// Dict returns the page dictionary
func (p *Page) Dict() core.Dict {
	return p.dict
}

// MediaBox returns [llx lly urx ury], defaulting to US Letter
func (p *Page) MediaBox() ([]float64, error) {
	box, err := p.box("MediaBox")
	if err != nil {
		return []float64{0, 0, 612, 792}, nil
	}
	return box, nil
}

// CropBox returns the crop box, which defaults to the media box
func (p *Page) CropBox() ([]float64, error) {
	box, err := p.box("CropBox")
	if err != nil {
		return p.MediaBox()
	}
	return box, nil
}

func (p *Page) box(name string) ([]float64, error) {
	obj, err := p.resolver.Resolve(p.attrs.Get(name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("%s missing or malformed", name)
	}
	box := make([]float64, 4)
	for i := range arr {
		item, err := p.resolver.Resolve(arr[i])
		if err != nil {
			return nil, err
		}
		v, ok := core.Number(item)
		if !ok {
			return nil, fmt.Errorf("invalid %s element type: %T", name, item)
		}
		box[i] = v
	}
	return box, nil
}

// Resources returns the page's resource dictionary, or an empty one
func (p *Page) Resources() (core.Dict, error) {
	obj, err := p.resolver.Resolve(p.attrs.Get("Resources"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	if res, ok := obj.(core.Dict); ok {
		return res, nil
	}
	return core.Dict{}, nil
}

// Contents returns the page's content streams in order
func (p *Page) Contents() ([]*core.Stream, error) {
	obj, err := p.resolver.Resolve(p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			resolved, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			if s, ok := resolved.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	}
	return nil, fmt.Errorf("invalid Contents type: %T", obj)
}

// Rotate returns the page rotation normalised to 0, 90, 180 or 270
func (p *Page) Rotate() int {
	obj, err := p.resolver.Resolve(p.attrs.Get("Rotate"))
	if err != nil {
		return 0
	}
	r, ok := core.Number(obj)
	if !ok {
		return 0
	}
	deg := ((int(r)/90)*90%360 + 360) % 360
	return deg
}

// Width returns the media box width
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the media box height
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}
