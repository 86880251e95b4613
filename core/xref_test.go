package core

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCompressedFile writes a document whose catalog and page tree live in
// an object stream, indexed by a cross-reference stream
func writeCompressedFile(t *testing.T) []byte {
	t.Helper()
	packed := []IndirectObject{
		{Ref: IndirectRef{Number: 1}, Object: Dict{"Type": Name("Catalog"), "Pages": IndirectRef{Number: 2}}},
		{Ref: IndirectRef{Number: 2}, Object: Dict{"Type": Name("Pages"), "Kids": Array{IndirectRef{Number: 3}}, "Count": Int(1)}},
	}
	objStm, err := BuildObjectStream(packed)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	require.NoError(t, w.WriteHeader("1.5"))
	require.NoError(t, w.WriteObject(3, Dict{"Type": Name("Page"), "Parent": IndirectRef{Number: 2}}))
	require.NoError(t, w.WriteObject(4, objStm))
	w.MarkCompressed(1, 4, 0)
	w.MarkCompressed(2, 4, 1)
	require.NoError(t, w.WriteXRefStream(5, Dict{"Root": IndirectRef{Number: 1}}))
	return buf.Bytes()
}

func TestXRefStream(t *testing.T) {
	data := writeCompressedFile(t)

	table, err := NewXRefParser(data).ParseAll()
	require.NoError(t, err)
	assert.True(t, table.IsStream)
	assert.Equal(t, IndirectRef{Number: 1}, table.Trailer["Root"])
	assert.Equal(t, Int(6), table.Trailer["Size"])
	for _, key := range []string{"W", "Index", "Filter", "Type", "Length"} {
		assert.False(t, table.Trailer.Has(key), "section key %s kept in trailer", key)
	}

	entry, ok := table.Get(2)
	require.True(t, ok)
	assert.Equal(t, XRefCompressed, entry.Type)
	assert.Equal(t, 4, entry.StreamNum)
	assert.Equal(t, 1, entry.Index)

	entry, ok = table.Get(3)
	require.True(t, ok)
	assert.Equal(t, XRefInUse, entry.Type)
	assert.True(t, bytes.HasPrefix(data[entry.Offset:], []byte("3 0 obj")))

	entry, ok = table.Get(5)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(data[entry.Offset:], []byte("5 0 obj")))
}

func TestXRefIncrementalUpdate(t *testing.T) {
	data := writeSimpleFile(t)
	prev, err := NewXRefParser(data).FindXRef()
	require.NoError(t, err)

	buf := bytes.NewBuffer(append([]byte(nil), data...))
	w := NewWriter(buf, int64(len(data)))
	require.NoError(t, w.WriteObject(3, Dict{"Type": Name("Page"), "Parent": IndirectRef{Number: 2}, "Annots": Array{IndirectRef{Number: 4}}}))
	require.NoError(t, w.WriteObject(4, Dict{"Type": Name("Annot"), "Subtype": Name("FreeText")}))
	require.NoError(t, w.WriteXRef(Dict{"Root": IndirectRef{Number: 1}, "Prev": Int(prev), "Size": Int(5)}))
	updated := buf.Bytes()

	table, err := NewXRefParser(updated).ParseAll()
	require.NoError(t, err)
	assert.Equal(t, 5, table.Size())
	assert.False(t, table.Trailer.Has("Prev"))

	entry, _ := table.Get(3)
	assert.Greater(t, entry.Offset, int64(len(data)), "newest definition wins")
	entry, _ = table.Get(1)
	assert.Less(t, entry.Offset, int64(len(data)))
}

func TestXRefPrevLoop(t *testing.T) {
	data := writeSimpleFile(t)
	start, err := NewXRefParser(data).FindXRef()
	require.NoError(t, err)

	// point /Prev back at the section itself
	looped := bytes.Replace(data, []byte("/Root 1 0 R"), []byte("/Prev "+itoa(start)+" /Root 1 0 R"), 1)
	table, err := NewXRefParser(looped).ParseAll()
	require.NoError(t, err)
	assert.Equal(t, 4, table.Size())
}

func TestXRefFreeHeadShift(t *testing.T) {
	data := []byte("%PDF-1.4\nxref\n1 2\n0000000000 65535 f \n0000000009 00000 n \ntrailer << /Size 2 >>\nstartxref\n9\n%%EOF\n")
	table, err := NewXRefParser(data).ParseXRef(9)
	require.NoError(t, err)

	entry, ok := table.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(9), entry.Offset)
	free, ok := table.Get(0)
	require.True(t, ok)
	assert.False(t, free.InUse())
}

func TestFindXRefErrors(t *testing.T) {
	_, err := NewXRefParser([]byte("%PDF-1.4\n1 0 obj null endobj\n")).FindXRef()
	assert.Error(t, err)

	_, err = NewXRefParser([]byte("%PDF-1.4\nstartxref\n99999\n%%EOF")).FindXRef()
	assert.Error(t, err)
}

func TestReconstruct(t *testing.T) {
	data := writeSimpleFile(t)
	broken := regexp.MustCompile(`startxref\n\d+`).ReplaceAll(data, []byte("startxref\n7"))

	_, err := NewXRefParser(broken).ParseAll()
	require.Error(t, err)

	table := NewXRefParser(broken).Reconstruct()
	assert.Equal(t, IndirectRef{Number: 1}, table.Trailer["Root"])
	assert.Equal(t, Int(4), table.Trailer["Size"])
	for n := 1; n <= 3; n++ {
		entry, ok := table.Get(n)
		require.True(t, ok, "object %d", n)
		obj, err := NewParserBytes(broken[entry.Offset:], entry.Offset).ParseIndirectObject()
		require.NoError(t, err)
		assert.Equal(t, n, obj.Ref.Number)
	}
}

func TestReconstructLastDefinitionWins(t *testing.T) {
	data := []byte("%PDF-1.4\n1 0 obj (old) endobj\n1 0 obj (new) endobj\ntrailer << /Root 1 0 R >>\n")
	table := NewXRefParser(data).Reconstruct()

	entry, ok := table.Get(1)
	require.True(t, ok)
	obj, err := NewParserBytes(data[entry.Offset:], entry.Offset).ParseIndirectObject()
	require.NoError(t, err)
	assert.Equal(t, String("new"), obj.Object)
}

func itoa(n int64) string {
	return Int(n).String()
}
