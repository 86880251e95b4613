package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/crsheet/core"
)

func ref(n int) core.IndirectRef {
	return core.IndirectRef{Number: n}
}

// buildDocument writes a two page document with one font and an Info
// dictionary. extraTrailer entries are merged into the trailer.
func buildDocument(t *testing.T, extraTrailer core.Dict) []byte {
	t.Helper()

	page1, err := core.NewFlateStream(nil, []byte("BT /F1 12 Tf 72 720 Td (CLIENT NAME: Acme) Tj ET"))
	require.NoError(t, err)
	page2, err := core.NewFlateStream(nil, []byte("BT /F1 12 Tf 72 720 Td (Page two) Tj ET"))
	require.NoError(t, err)

	var buf bytes.Buffer
	w := core.NewWriter(&buf, 0)
	require.NoError(t, w.WriteHeader("1.4"))
	require.NoError(t, w.WriteObject(1, core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2)}))
	require.NoError(t, w.WriteObject(2, core.Dict{
		"Type":      core.Name("Pages"),
		"Kids":      core.Array{ref(3), ref(4)},
		"Count":     core.Int(2),
		"Resources": core.Dict{"Font": core.Dict{"F1": ref(6)}},
	}))
	require.NoError(t, w.WriteObject(3, core.Dict{"Type": core.Name("Page"), "Parent": ref(2), "Contents": ref(5)}))
	require.NoError(t, w.WriteObject(4, core.Dict{"Type": core.Name("Page"), "Parent": ref(2), "Contents": ref(7)}))
	require.NoError(t, w.WriteObject(5, page1))
	require.NoError(t, w.WriteObject(6, core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")}))
	require.NoError(t, w.WriteObject(7, page2))
	require.NoError(t, w.WriteObject(8, core.Dict{"Title": core.String("Review")}))

	trailer := core.Dict{"Root": ref(1), "Info": ref(8)}
	for k, v := range extraTrailer {
		trailer[k] = v
	}
	require.NoError(t, w.WriteXRef(trailer))
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buildDocument(t, nil), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "1.4", r.Version().String())
	assert.False(t, r.Repaired())
	assert.Equal(t, 9, r.NumObjects())

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestNotPDF(t *testing.T) {
	_, err := NewReader([]byte("PK\x03\x04 this is a zip"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestEncrypted(t *testing.T) {
	data := buildDocument(t, core.Dict{"Encrypt": core.Dict{"Filter": core.Name("Standard")}})
	_, err := NewReader(data)
	assert.ErrorIs(t, err, ErrEncrypted)
}

func TestGetObject(t *testing.T) {
	r, err := NewReader(buildDocument(t, nil))
	require.NoError(t, err)

	obj, err := r.GetObject(6)
	require.NoError(t, err)
	d, ok := obj.(core.Dict)
	require.True(t, ok)
	assert.Equal(t, core.Name("Helvetica"), d["BaseFont"])

	again, err := r.GetObject(6)
	require.NoError(t, err)
	assert.Equal(t, obj, again)

	missing, err := r.GetObject(42)
	require.NoError(t, err)
	assert.Equal(t, core.Null{}, missing)
}

func TestGetInfo(t *testing.T) {
	r, err := NewReader(buildDocument(t, nil))
	require.NoError(t, err)

	info, err := r.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, core.String("Review"), info["Title"])
}

func TestResolveDeepTerminatesOnCycles(t *testing.T) {
	r, err := NewReader(buildDocument(t, nil))
	require.NoError(t, err)

	obj, err := r.ResolveDeep(ref(1))
	require.NoError(t, err)
	catalog := obj.(core.Dict)
	pagesNode, ok := catalog["Pages"].(core.Dict)
	require.True(t, ok)
	assert.Len(t, pagesNode["Kids"], 2)
}

func TestGetPage(t *testing.T) {
	r, err := NewReader(buildDocument(t, nil))
	require.NoError(t, err)

	page, err := r.GetPage(1)
	require.NoError(t, err)
	assert.Equal(t, ref(4), page.Ref)

	_, err = r.GetPage(5)
	assert.Error(t, err)

	all, err := r.Pages()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestExtractText(t *testing.T) {
	r, err := NewReader(buildDocument(t, nil))
	require.NoError(t, err)

	first, err := r.ExtractText(0)
	require.NoError(t, err)
	assert.Equal(t, "CLIENT NAME: Acme\n", first)

	second, err := r.ExtractText(1)
	require.NoError(t, err)
	assert.Equal(t, "Page two\n", second)
}

func TestObjectStreams(t *testing.T) {
	packed := []core.IndirectObject{
		{Ref: ref(1), Object: core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2)}},
		{Ref: ref(2), Object: core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(3)}, "Count": core.Int(1)}},
	}
	objStm, err := core.BuildObjectStream(packed)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := core.NewWriter(&buf, 0)
	require.NoError(t, w.WriteHeader("1.5"))
	require.NoError(t, w.WriteObject(3, core.Dict{"Type": core.Name("Page"), "Parent": ref(2)}))
	require.NoError(t, w.WriteObject(4, objStm))
	w.MarkCompressed(1, 4, 0)
	w.MarkCompressed(2, 4, 1)
	require.NoError(t, w.WriteXRefStream(5, core.Dict{"Root": ref(1)}))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, r.XRefTable().IsStream)

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIncrementalUpdate(t *testing.T) {
	data := buildDocument(t, nil)
	prev, err := core.NewXRefParser(data).FindXRef()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(data)
	w := core.NewWriter(&buf, int64(len(data)))
	require.NoError(t, w.WriteObject(8, core.Dict{"Title": core.String("Updated")}))
	require.NoError(t, w.WriteXRef(core.Dict{"Root": ref(1), "Info": ref(8), "Prev": core.Int(prev), "Size": core.Int(9)}))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	assert.False(t, r.Repaired())

	info, err := r.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, core.String("Updated"), info["Title"])
}

func TestRepairBadStartXRef(t *testing.T) {
	data := buildDocument(t, nil)
	idx := bytes.LastIndex(data, []byte("startxref\n"))
	require.Positive(t, idx)
	broken := append(append([]byte{}, data[:idx]...), []byte("startxref\n999999\n%%EOF\n")...)

	r, err := NewReader(broken)
	require.NoError(t, err)
	assert.True(t, r.Repaired())

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	text, err := r.ExtractText(0)
	require.NoError(t, err)
	assert.Equal(t, "CLIENT NAME: Acme\n", text)
}

func TestRepairMissingXRefAndTrailer(t *testing.T) {
	data := buildDocument(t, nil)
	idx := bytes.Index(data, []byte("xref\n"))
	require.Positive(t, idx)

	r, err := NewReader(data[:idx])
	require.NoError(t, err)
	assert.True(t, r.Repaired())
	assert.Equal(t, ref(1), r.Trailer()["Root"])

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestJunkBeforeHeader(t *testing.T) {
	data := append([]byte("garbage from a mail gateway\n"), buildDocument(t, nil)...)

	r, err := NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, "1.4", r.Version().String())
	assert.True(t, r.Repaired(), "offsets shift by the junk length")

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStaleObjectOffset(t *testing.T) {
	data := buildDocument(t, nil)
	table, err := core.NewXRefParser(data).ParseAll()
	require.NoError(t, err)
	entry, _ := table.Get(6)

	// point object 6 at object 7 by rewriting its xref line
	good := []byte(pad10(entry.Offset) + " 00000 n")
	entry7, _ := table.Get(7)
	bad := []byte(pad10(entry7.Offset) + " 00000 n")
	patched := bytes.Replace(data, good, bad, 1)
	require.NotEqual(t, data, patched)

	r, err := NewReader(patched)
	require.NoError(t, err)

	obj, err := r.GetObject(6)
	require.NoError(t, err)
	assert.True(t, r.Repaired())
	assert.Equal(t, core.Name("Helvetica"), obj.(core.Dict)["BaseFont"])
}

func pad10(n int64) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}
