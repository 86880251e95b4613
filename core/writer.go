package core

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Writer emits indirect objects and a cross-reference section. It is used
// both for whole files and for incremental updates appended to an existing
// file, in which case startOffset is the length of the original bytes.
type Writer struct {
	w       io.Writer
	offset  int64
	start   int64
	entries map[int]*XRefEntry
}

// NewWriter creates a writer whose first byte lands at startOffset
func NewWriter(w io.Writer, startOffset int64) *Writer {
	return &Writer{
		w:       w,
		offset:  startOffset,
		start:   startOffset,
		entries: make(map[int]*XRefEntry),
	}
}

// Offset returns the file offset of the next byte to be written
func (w *Writer) Offset() int64 {
	return w.offset
}

// WriteRaw writes bytes without recording anything in the xref
func (w *Writer) WriteRaw(p []byte) error {
	n, err := w.w.Write(p)
	w.offset += int64(n)
	return err
}

// WriteHeader writes the %PDF header line followed by a binary comment
func (w *Writer) WriteHeader(version string) error {
	return w.WriteRaw([]byte("%PDF-" + version + "\n%\xe2\xe3\xcf\xd3\n"))
}

// WriteObject writes "num 0 obj ... endobj" and records its offset
func (w *Writer) WriteObject(num int, obj Object) error {
	w.entries[num] = &XRefEntry{Type: XRefInUse, Offset: w.offset}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj\n", num)
	buf.Write(Marshal(obj))
	buf.WriteString("\nendobj\n")
	return w.WriteRaw(buf.Bytes())
}

// MarkCompressed records that objNum lives at index inside object stream streamNum
func (w *Writer) MarkCompressed(objNum, streamNum, index int) {
	w.entries[objNum] = &XRefEntry{Type: XRefCompressed, StreamNum: streamNum, Index: index}
}

// objectNumbers returns the recorded numbers in ascending order
func (w *Writer) objectNumbers() []int {
	nums := make([]int, 0, len(w.entries)+1)
	for n := range w.entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// runs groups sorted object numbers into [first, count] subsections
func runs(nums []int) [][2]int {
	var out [][2]int
	for _, n := range nums {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last[0]+last[1] == n {
				last[1]++
				continue
			}
		}
		out = append(out, [2]int{n, 1})
	}
	return out
}

// WriteXRef writes a classic xref table, the trailer and the startxref
// footer. A whole-file writer also emits the free head entry for object 0.
func (w *Writer) WriteXRef(trailer Dict) error {
	if w.start == 0 {
		w.entries[0] = &XRefEntry{Type: XRefFree, Generation: 65535}
	}

	xrefOffset := w.offset
	var buf bytes.Buffer
	buf.WriteString("xref\n")

	nums := w.objectNumbers()
	for _, run := range runs(nums) {
		fmt.Fprintf(&buf, "%d %d\n", run[0], run[1])
		for n := run[0]; n < run[0]+run[1]; n++ {
			e := w.entries[n]
			switch e.Type {
			case XRefInUse:
				fmt.Fprintf(&buf, "%010d %05d n\r\n", e.Offset, e.Generation)
			case XRefFree:
				fmt.Fprintf(&buf, "%010d %05d f\r\n", 0, e.Generation)
			default:
				return fmt.Errorf("object %d is compressed and needs an xref stream", n)
			}
		}
	}

	t := trailer.Clone()
	if _, ok := t.GetInt("Size"); !ok || w.start == 0 {
		t["Size"] = Int(nums[len(nums)-1] + 1)
	}
	buf.WriteString("trailer\n")
	buf.Write(Marshal(t))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return w.WriteRaw(buf.Bytes())
}

// WriteXRefStream writes a cross-reference stream as object num, followed
// by the startxref footer. Trailer entries such as /Root and /Prev are
// copied into the stream dictionary.
func (w *Writer) WriteXRefStream(num int, trailer Dict) error {
	if w.start == 0 {
		w.entries[0] = &XRefEntry{Type: XRefFree, Generation: 65535}
	}
	xrefOffset := w.offset
	w.entries[num] = &XRefEntry{Type: XRefInUse, Offset: xrefOffset}

	nums := w.objectNumbers()
	var rows bytes.Buffer
	for _, n := range nums {
		e := w.entries[n]
		switch e.Type {
		case XRefFree:
			rows.Write([]byte{0, 0, 0, 0, 0, byte(e.Generation >> 8), byte(e.Generation)})
		case XRefInUse:
			rows.WriteByte(1)
			rows.Write(bigEndian(e.Offset, 4))
			rows.Write(bigEndian(int64(e.Generation), 2))
		case XRefCompressed:
			rows.WriteByte(2)
			rows.Write(bigEndian(int64(e.StreamNum), 4))
			rows.Write(bigEndian(int64(e.Index), 2))
		}
	}

	index := Array{}
	for _, run := range runs(nums) {
		index = append(index, Int(run[0]), Int(run[1]))
	}

	dict := trailer.Clone()
	dict["Type"] = Name("XRef")
	dict["W"] = Array{Int(1), Int(4), Int(2)}
	dict["Index"] = index
	if size, ok := dict.GetInt("Size"); !ok || int(size) <= nums[len(nums)-1] {
		dict["Size"] = Int(nums[len(nums)-1] + 1)
	}
	stream, err := NewFlateStream(dict, rows.Bytes())
	if err != nil {
		return err
	}

	if err := w.WriteObject(num, stream); err != nil {
		return err
	}
	return w.WriteRaw([]byte(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefOffset)))
}

func bigEndian(v int64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// NewFlateStream compresses data and returns a stream whose dictionary
// carries /Filter /FlateDecode along with the entries of dict
func NewFlateStream(dict Dict, data []byte) (*Stream, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress stream: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress stream: %w", err)
	}

	d := dict.Clone()
	if d == nil {
		d = make(Dict)
	}
	d["Filter"] = Name("FlateDecode")
	d["Length"] = Int(buf.Len())
	return &Stream{Dict: d, Data: buf.Bytes()}, nil
}

// BuildObjectStream packs non-stream objects into a compressed /ObjStm
func BuildObjectStream(objs []IndirectObject) (*Stream, error) {
	var header, body bytes.Buffer
	for _, o := range objs {
		if _, isStream := o.Object.(*Stream); isStream {
			return nil, fmt.Errorf("object %d is a stream and cannot be packed", o.Ref.Number)
		}
		fmt.Fprintf(&header, "%d %d ", o.Ref.Number, body.Len())
		body.Write(Marshal(o.Object))
		body.WriteByte('\n')
	}
	header.WriteByte('\n')

	return NewFlateStream(Dict{
		"Type":  Name("ObjStm"),
		"N":     Int(len(objs)),
		"First": Int(header.Len()),
	}, append(header.Bytes(), body.Bytes()...))
}

// Marshal serialises an object in PDF syntax. Dictionary keys are written
// in sorted order so output is deterministic.
func Marshal(obj Object) []byte {
	var buf bytes.Buffer
	marshalTo(&buf, obj)
	return buf.Bytes()
}

func marshalTo(buf *bytes.Buffer, obj Object) {
	switch v := obj.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case String:
		writeLiteralString(buf, []byte(v))
	case Name:
		writeName(buf, string(v))
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			marshalTo(buf, item)
		}
		buf.WriteByte(']')
	case Dict:
		buf.WriteString("<<")
		for _, k := range v.Keys() {
			writeName(buf, k)
			buf.WriteByte(' ')
			marshalTo(buf, v[k])
		}
		buf.WriteString(">>")
	case *Stream:
		d := v.Dict.Clone()
		if d == nil {
			d = make(Dict)
		}
		d["Length"] = Int(len(v.Data))
		marshalTo(buf, d)
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	case IndirectRef:
		fmt.Fprintf(buf, "%d %d R", v.Number, v.Generation)
	default:
		buf.WriteString("null")
	}
}

func writeLiteralString(buf *bytes.Buffer, s []byte) {
	buf.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 || c > 0x7e {
				fmt.Fprintf(buf, "\\%03o", c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte(')')
}

func writeName(buf *bytes.Buffer, name string) {
	buf.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter(c) {
			fmt.Fprintf(buf, "#%02X", c)
		} else {
			buf.WriteByte(c)
		}
	}
}
