package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tsawler/crsheet/core"
	"github.com/tsawler/crsheet/pages"
	"github.com/tsawler/crsheet/text"
)

var (
	// ErrNotPDF is returned when the input has no %PDF- header
	ErrNotPDF = errors.New("not a PDF document")
	// ErrEncrypted is returned for documents protected by a security handler
	ErrEncrypted = errors.New("encrypted documents are not supported")
)

// maxResolveDepth bounds ResolveDeep on cyclic object graphs
const maxResolveDepth = 16

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Option configures a Reader
type Option func(*Reader)

// WithLogger sets the logger used to report repairs
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reader) {
		r.log = logger
	}
}

// Reader gives random access to the objects of a PDF held in memory
type Reader struct {
	data      []byte
	xrefTable *core.XRefTable
	trailer   core.Dict
	version   PDFVersion
	objCache  map[int]core.Object
	objStms   map[int]*core.ObjectStream
	loading   map[int]bool
	pageTree  *pages.PageTree
	repaired  bool
	log       zerolog.Logger
}

var _ pages.ObjectResolver = (*Reader)(nil)

// Open reads a PDF file into memory and returns a Reader
func Open(filename string, opts ...Option) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewReader(data, opts...)
}

// NewReader parses the header and cross-reference data of a PDF. A missing
// or damaged cross-reference section is rebuilt by scanning the file.
func NewReader(data []byte, opts ...Option) (*Reader, error) {
	r := &Reader{
		data:     data,
		objCache: make(map[int]core.Object),
		objStms:  make(map[int]*core.ObjectStream),
		loading:  make(map[int]bool),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	version, err := r.parseHeader()
	if err != nil {
		return nil, err
	}
	r.version = version

	if err := r.loadXRef(); err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	if r.trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}
	return r, nil
}

// Close releases the document bytes
func (r *Reader) Close() error {
	r.data = nil
	r.objCache = nil
	r.objStms = nil
	return nil
}

var versionPattern = regexp.MustCompile(`^%PDF-(\d+)\.(\d+)`)

// parseHeader finds %PDF-x.y within the first kilobyte; some producers
// write junk before the header.
func (r *Reader) parseHeader() (PDFVersion, error) {
	head := r.data
	if len(head) > 1024 {
		head = head[:1024]
	}
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return PDFVersion{}, ErrNotPDF
	}
	m := versionPattern.FindSubmatch(r.data[idx:])
	if m == nil {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", head[idx:min(len(head), idx+8)])
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

func (r *Reader) loadXRef() error {
	table, err := core.NewXRefParser(r.data).ParseAll()
	if err == nil && table.Trailer.Has("Root") {
		r.xrefTable = table
		r.trailer = table.Trailer
		if _, err := r.GetCatalog(); err == nil {
			return nil
		}
		err = fmt.Errorf("catalog unreachable through xref")
	} else if err == nil {
		err = fmt.Errorf("trailer has no /Root")
	}

	r.log.Warn().Err(err).Msg("cross-reference data damaged, rebuilding from object headers")
	return r.repair()
}

// repair rebuilds the xref by scanning for object headers, registers the
// members of any object streams found, and locates the catalog when the
// trailer does not name one.
func (r *Reader) repair() error {
	table := core.NewXRefParser(r.data).Reconstruct()
	if table.Size() == 0 {
		return fmt.Errorf("no objects found")
	}
	r.xrefTable = table
	r.trailer = table.Trailer
	r.objCache = make(map[int]core.Object)
	r.objStms = make(map[int]*core.ObjectStream)
	r.repaired = true

	var catalog core.IndirectRef
	for num := range table.Entries {
		obj, err := r.GetObject(num)
		if err != nil {
			continue
		}
		switch v := obj.(type) {
		case *core.Stream:
			if t, _ := v.Dict.GetName("Type"); t == "ObjStm" {
				r.registerObjectStream(num, v)
			}
		case core.Dict:
			if t, _ := v.GetName("Type"); t == "Catalog" && (catalog.IsZero() || num > catalog.Number) {
				catalog = core.IndirectRef{Number: num}
			}
		}
	}

	if _, err := r.GetCatalog(); err != nil {
		if catalog.IsZero() {
			catalog = r.findCompressedCatalog()
		}
		if catalog.IsZero() {
			return fmt.Errorf("document catalog not found")
		}
		r.trailer["Root"] = catalog
	}
	return nil
}

func (r *Reader) registerObjectStream(num int, stream *core.Stream) {
	stm, err := core.NewObjectStream(stream)
	if err != nil {
		return
	}
	nums, err := stm.ObjectNumbers()
	if err != nil {
		return
	}
	r.objStms[num] = stm
	for i, n := range nums {
		if _, exists := r.xrefTable.Get(n); !exists {
			r.xrefTable.Set(n, &core.XRefEntry{Type: core.XRefCompressed, StreamNum: num, Index: i})
		}
	}
}

func (r *Reader) findCompressedCatalog() core.IndirectRef {
	for num, entry := range r.xrefTable.Entries {
		if entry.Type != core.XRefCompressed {
			continue
		}
		if obj, err := r.GetObject(num); err == nil {
			if d, ok := obj.(core.Dict); ok {
				if t, _ := d.GetName("Type"); t == "Catalog" {
					return core.IndirectRef{Number: num}
				}
			}
		}
	}
	return core.IndirectRef{}
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// Repaired reports whether the cross-reference data had to be rebuilt
func (r *Reader) Repaired() bool {
	return r.repaired
}

// XRefTable returns the cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// NumObjects returns the trailer /Size
func (r *Reader) NumObjects() int {
	size, _ := r.trailer.GetInt("Size")
	return int(size)
}

// FileSize returns the size of the document in bytes
func (r *Reader) FileSize() int64 {
	return int64(len(r.data))
}

// Data returns the raw document bytes
func (r *Reader) Data() []byte {
	return r.data
}

// GetObject loads an object by number. References to objects that are
// missing or free resolve to null.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself while loading", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	entry, ok := r.xrefTable.Get(objNum)
	if !ok || !entry.InUse() {
		return core.Null{}, nil
	}

	var obj core.Object
	var err error
	if entry.Type == core.XRefCompressed {
		obj, err = r.loadCompressed(objNum, entry)
	} else {
		obj, err = r.loadAt(objNum, entry.Offset)
	}
	if err != nil {
		if entry.Type == core.XRefCompressed || r.repaired {
			return nil, err
		}
		// a stale offset usually means the whole table is off
		delete(r.loading, objNum)
		if rerr := r.repair(); rerr != nil {
			return nil, err
		}
		r.log.Warn().Int("object", objNum).Msg("rebuilt cross-reference data after a bad object offset")
		return r.GetObject(objNum)
	}

	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) loadAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d offset %d out of range", objNum, offset)
	}
	parser := core.NewParserBytes(r.data[offset:], offset)
	parser.SetReferenceResolver(r)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, indObj.Ref.Number)
	}
	return indObj.Object, nil
}

func (r *Reader) loadCompressed(objNum int, entry *core.XRefEntry) (core.Object, error) {
	stm, ok := r.objStms[entry.StreamNum]
	if !ok {
		container, err := r.GetObject(entry.StreamNum)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", entry.StreamNum, err)
		}
		stream, isStream := container.(*core.Stream)
		if !isStream {
			return nil, fmt.Errorf("object stream %d is not a stream", entry.StreamNum)
		}
		stm, err = core.NewObjectStream(stream)
		if err != nil {
			return nil, fmt.Errorf("invalid object stream %d: %w", entry.StreamNum, err)
		}
		r.objStms[entry.StreamNum] = stm
	}

	obj, num, err := stm.GetObjectByIndex(entry.Index)
	if err == nil && num == objNum {
		return obj, nil
	}
	// the index in the xref disagrees with the stream header; look it up by number
	return stm.GetObjectByNumber(objNum)
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve resolves obj if it is an indirect reference, otherwise returns it as-is
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// ResolveDeep resolves references recursively inside arrays and
// dictionaries. References deeper than a fixed limit are left in place, so
// cycles such as /Parent links terminate.
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolveDeep(obj, 0)
}

func (r *Reader) resolveDeep(obj core.Object, depth int) (core.Object, error) {
	if depth > maxResolveDepth {
		return obj, nil
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}

	switch v := resolved.(type) {
	case core.Array:
		result := make(core.Array, len(v))
		for i, elem := range v {
			if result[i], err = r.resolveDeep(elem, depth+1); err != nil {
				return nil, err
			}
		}
		return result, nil
	case core.Dict:
		result := make(core.Dict, len(v))
		for key, val := range v {
			if result[key], err = r.resolveDeep(val, depth+1); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	return resolved, nil
}

// GetCatalog returns the document catalog
func (r *Reader) GetCatalog() (core.Dict, error) {
	ref, ok := r.trailer.GetIndirectRef("Root")
	if !ok {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	obj, err := r.ResolveReference(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary: %T", obj)
	}
	return catalog, nil
}

// GetInfo returns the document information dictionary, or nil
func (r *Reader) GetInfo() (core.Dict, error) {
	obj, err := r.Resolve(r.trailer.Get("Info"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve info: %w", err)
	}
	info, _ := obj.(core.Dict)
	return info, nil
}

// PageCount returns the number of pages
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePageTree(); err != nil {
		return 0, err
	}
	return r.pageTree.Count()
}

// GetPage returns the page at index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.GetPage(index)
}

// Pages returns every page in document order
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages()
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := pages.NewCatalog(catalog, r).Pages()
	if err != nil {
		return err
	}
	r.pageTree = pages.NewPageTree(root, r)
	return nil
}

// ExtractText returns the text of the page at index (0-based) in reading order
func (r *Reader) ExtractText(index int) (string, error) {
	page, err := r.GetPage(index)
	if err != nil {
		return "", err
	}
	return text.PageText(page, r)
}
