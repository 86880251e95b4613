package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/crsheet/core"
	"github.com/tsawler/crsheet/font"
	"github.com/tsawler/crsheet/pages"
	"github.com/tsawler/crsheet/reader"
)

// ErrDamaged is returned for documents whose cross-reference data had to
// be rebuilt; appending an update to them would chain onto a bad /Prev.
var ErrDamaged = errors.New("document cross-reference data is damaged")

// defaultSize is the width and height of a note box without a Rect.
var defaultSize = [2]float64{200, 60}

// Note is a FreeText annotation to add.
type Note struct {
	// Page is 1-based.
	Page int
	Text string
	// Rect is [llx lly urx ury] in default user space. A zero Rect places
	// the note in the top left corner of the page, below earlier notes.
	Rect   [4]float64
	Author string
	// Date defaults to the time of the update.
	Date time.Time
	// OmitContents writes the annotation without a /Contents entry.
	OmitContents bool
}

// AddFreeText appends notes to the PDF at src as an incremental update and
// writes the result to dst, which may be src itself. The update uses a
// cross-reference stream when the newest section of src is one.
func AddFreeText(src, dst string, notes []Note) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	out, err := Append(data, notes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// Append returns data followed by an incremental update adding notes.
func Append(data []byte, notes []Note) ([]byte, error) {
	r, err := reader.NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if r.Repaired() {
		return nil, ErrDamaged
	}
	all, err := r.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to read page tree: %w", err)
	}

	u := &update{
		reader:  r,
		next:    nextObjectNumber(r),
		changed: make(map[int]core.Dict),
		now:     time.Now(),
	}
	for i, n := range notes {
		if n.Page < 1 || n.Page > len(all) {
			return nil, fmt.Errorf("note %d: page %d out of range (1-%d)", i+1, n.Page, len(all))
		}
		if err := u.add(all[n.Page-1], n); err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
	}
	return u.write(data)
}

func nextObjectNumber(r *reader.Reader) int {
	next := r.NumObjects()
	if max := r.XRefTable().MaxObjectNumber() + 1; max > next {
		next = max
	}
	if next < 1 {
		next = 1
	}
	return next
}

// update collects the objects of one incremental update.
type update struct {
	reader  *reader.Reader
	next    int
	objects []core.IndirectObject
	changed map[int]core.Dict // page dictionaries by object number
	stacked map[int]int       // notes placed automatically per page
	now     time.Time
}

func (u *update) alloc() core.IndirectRef {
	ref := core.IndirectRef{Number: u.next}
	u.next++
	return ref
}

func (u *update) add(page *pages.Page, n Note) error {
	if page.Ref.IsZero() {
		return fmt.Errorf("page %d is not an indirect object", page.Number)
	}
	if page.Ref.Generation != 0 {
		return fmt.Errorf("page %d has generation %d; only generation 0 can be rewritten", page.Number, page.Ref.Generation)
	}

	dict, ok := u.changed[page.Ref.Number]
	if !ok {
		dict = page.Dict().Clone()
		annots, err := u.existingAnnots(dict)
		if err != nil {
			return err
		}
		dict["Annots"] = annots
		u.changed[page.Ref.Number] = dict
	}

	rect := n.Rect
	if rect == [4]float64{} {
		rect = u.place(page)
	}
	date := n.Date
	if date.IsZero() {
		date = u.now
	}

	annotRef := u.alloc()
	apRef := u.alloc()
	annot := core.Dict{
		"Type":    core.Name("Annot"),
		"Subtype": core.Name(pages.SubtypeFreeText),
		"Rect":    core.Array{core.Real(rect[0]), core.Real(rect[1]), core.Real(rect[2]), core.Real(rect[3])},
		"P":       page.Ref,
		"F":       core.Int(4),
		"DA":      core.String("/Helv 10 Tf 0 g"),
		"NM":      core.String(fmt.Sprintf("crsheet-%d", annotRef.Number)),
		"M":       core.String(pdfDate(date)),
		"AP":      core.Dict{"N": apRef},
	}
	if !n.OmitContents {
		annot["Contents"] = core.String(font.EncodeTextString(n.Text))
	}
	if n.Author != "" {
		annot["T"] = core.String(font.EncodeTextString(n.Author))
	}

	ap, err := appearance(rect, n.Text)
	if err != nil {
		return err
	}
	u.objects = append(u.objects,
		core.IndirectObject{Ref: annotRef, Object: annot},
		core.IndirectObject{Ref: apRef, Object: ap},
	)
	dict["Annots"] = append(dict["Annots"].(core.Array), annotRef)
	return nil
}

// existingAnnots copies the page's current /Annots, which may be an
// indirect array.
func (u *update) existingAnnots(dict core.Dict) (core.Array, error) {
	obj, err := u.reader.Resolve(dict.Get("Annots"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Annots: %w", err)
	}
	arr, _ := obj.(core.Array)
	return append(core.Array{}, arr...), nil
}

// place stacks automatically positioned notes down the left edge.
func (u *update) place(page *pages.Page) [4]float64 {
	if u.stacked == nil {
		u.stacked = make(map[int]int)
	}
	box, err := page.CropBox()
	if err != nil || len(box) != 4 {
		box = []float64{0, 0, 612, 792}
	}
	i := u.stacked[page.Ref.Number]
	u.stacked[page.Ref.Number] = i + 1

	x := box[0] + 36
	top := box[3] - 36 - float64(i)*(defaultSize[1]+12)
	return [4]float64{x, top - defaultSize[1], x + defaultSize[0], top}
}

func (u *update) write(data []byte) ([]byte, error) {
	table := u.reader.XRefTable()

	var buf bytes.Buffer
	buf.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
	w := core.NewWriter(&buf, int64(buf.Len()))

	for _, obj := range u.objects {
		if err := w.WriteObject(obj.Ref.Number, obj.Object); err != nil {
			return nil, fmt.Errorf("failed to write object %d: %w", obj.Ref.Number, err)
		}
	}
	nums := make([]int, 0, len(u.changed))
	for num := range u.changed {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	for _, num := range nums {
		if err := w.WriteObject(num, u.changed[num]); err != nil {
			return nil, fmt.Errorf("failed to write page object %d: %w", num, err)
		}
	}

	trailer := core.Dict{"Prev": core.Int(table.StartXRef)}
	for _, key := range []string{"Root", "Info", "ID"} {
		if v := u.reader.Trailer().Get(key); v != nil {
			trailer[key] = v
		}
	}

	var err error
	if table.IsStream {
		xrefNum := u.alloc().Number
		trailer["Size"] = core.Int(u.next)
		err = w.WriteXRefStream(xrefNum, trailer)
	} else {
		trailer["Size"] = core.Int(u.next)
		err = w.WriteXRef(trailer)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write cross-reference section: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfDate formats t as a PDF date string.
func pdfDate(t time.Time) string {
	return t.Format("D:20060102150405-07'00'")
}

var winAnsi = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// appearance draws a pale yellow box with the note's first lines of text.
func appearance(rect [4]float64, text string) (*core.Stream, error) {
	w, h := rect[2]-rect[0], rect[3]-rect[1]

	var content bytes.Buffer
	fmt.Fprintf(&content, "q 1 1 0.8 rg 0 0 0 RG 0.5 w 0 0 %.2f %.2f re B Q\n", w, h)
	content.WriteString("BT /Helv 10 Tf 0 g 12 TL\n")
	fmt.Fprintf(&content, "4 %.2f Td\n", h-12)
	for i, line := range strings.Split(text, "\n") {
		if float64(i+1)*12 > h {
			break
		}
		encoded, err := winAnsi.String(line)
		if err != nil {
			return nil, fmt.Errorf("failed to encode appearance text: %w", err)
		}
		content.Write(core.Marshal(core.String(encoded)))
		content.WriteString(" Tj T*\n")
	}
	content.WriteString("ET\n")

	return core.NewFlateStream(core.Dict{
		"Type":    core.Name("XObject"),
		"Subtype": core.Name("Form"),
		"BBox":    core.Array{core.Int(0), core.Int(0), core.Real(w), core.Real(h)},
		"Resources": core.Dict{"Font": core.Dict{"Helv": core.Dict{
			"Type":     core.Name("Font"),
			"Subtype":  core.Name("Type1"),
			"BaseFont": core.Name("Helvetica"),
			"Encoding": core.Name("WinAnsiEncoding"),
		}}},
	}, content.Bytes())
}
