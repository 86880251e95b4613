package pages

import (
	"fmt"

	"github.com/tsawler/crsheet/core"
)

// ObjectResolver resolves indirect references
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveDeep(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// inheritable lists the page attributes a page takes from its ancestors
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// maxTreeDepth bounds page tree recursion in damaged files
const maxTreeDepth = 64

// Catalog is the document catalog
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog wraps a catalog dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Pages returns the root of the page tree
func (c *Catalog) Pages() (core.Dict, error) {
	pagesObj, err := c.resolver.Resolve(c.dict.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	pagesDict, ok := pagesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog /Pages is not a dictionary: %T", pagesObj)
	}
	return pagesDict, nil
}

// Version returns the catalog /Version override, if any
func (c *Catalog) Version() string {
	if name, ok := c.dict.GetName("Version"); ok {
		return string(name)
	}
	return ""
}

// PageTree flattens the page tree into document order
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree creates a page tree rooted at the /Pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the number of pages actually reachable in the tree. The
// root's /Count is not trusted because damaged files often get it wrong.
func (t *PageTree) Count() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPage returns the page at index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns every page in document order
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}

	pages := make([]*Page, 0)
	visited := make(map[core.IndirectRef]bool)
	if err := t.walk(t.root, core.IndirectRef{}, core.Dict{}, visited, 0, &pages); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = pages
	return pages, nil
}

// walk visits node and its descendants. inherited carries the attributes
// collected from ancestors; values on the node itself take precedence.
func (t *PageTree) walk(node core.Dict, ref core.IndirectRef, inherited core.Dict, visited map[core.IndirectRef]bool, depth int, out *[]*Page) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	attrs := inherited.Clone()
	for _, key := range inheritable {
		if v := node.Get(key); v != nil {
			attrs[key] = v
		}
	}

	if !isPagesNode(node) {
		*out = append(*out, newPage(node, ref, attrs, len(*out)+1, t.resolver))
		return nil
	}

	kidsObj, err := t.resolver.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("failed to resolve /Kids: %w", err)
	}
	kids, _ := kidsObj.(core.Array)
	for i, kid := range kids {
		kidRef, isRef := kid.(core.IndirectRef)
		if isRef {
			if visited[kidRef] {
				continue
			}
			visited[kidRef] = true
		}

		resolved, err := t.resolver.Resolve(kid)
		if err != nil {
			return fmt.Errorf("failed to resolve kid %d: %w", i, err)
		}
		kidDict, ok := resolved.(core.Dict)
		if !ok {
			// a dangling kid drops out instead of failing the whole document
			continue
		}
		if err := t.walk(kidDict, kidRef, attrs, visited, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// isPagesNode decides between an intermediate node and a leaf. /Type is
// consulted first; a node without it is intermediate when it has /Kids.
func isPagesNode(node core.Dict) bool {
	switch typ, _ := node.GetName("Type"); typ {
	case "Pages":
		return true
	case "Page":
		return false
	}
	return node.Has("Kids")
}
