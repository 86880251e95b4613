package sample

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/crsheet/annotate"
	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/reader"
)

func TestBuildDefault(t *testing.T) {
	data, err := Build(Default())
	require.NoError(t, err)

	r, err := reader.NewReader(data)
	require.NoError(t, err)
	assert.False(t, r.Repaired())

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	first, err := r.ExtractText(0)
	require.NoError(t, err)
	assert.Contains(t, first, "CLIENT NAME: Northwind Utilities\n")
	assert.Contains(t, first, "PURCHASE ORDER REFERENCE: PO-55120\n")
	assert.Less(t, strings.Index(first, "Design Basis"), strings.Index(first, "CLIENT NAME"))

	got := fields.Parse(first)
	assert.Equal(t, Default().Fields, got)

	page, err := r.GetPage(0)
	require.NoError(t, err)
	annots, err := page.Annotations()
	require.NoError(t, err)
	assert.Len(t, annots, 2)
}

func TestBuildWithoutNotes(t *testing.T) {
	data, err := Build(Review{Body: [][]string{{"only text"}}})
	require.NoError(t, err)

	r, err := reader.NewReader(data)
	require.NoError(t, err)
	text, err := r.ExtractText(0)
	require.NoError(t, err)
	assert.Equal(t, "only text\n", text)
}

func TestBuildReplacesUnencodableText(t *testing.T) {
	_, err := Build(Review{Body: [][]string{{"Größe 確認"}}})
	assert.NoError(t, err)
}

func TestBuildBadNote(t *testing.T) {
	_, err := Build(Review{Notes: []annotate.Note{{Page: 4, Text: "x"}}})
	assert.ErrorContains(t, err, "failed to add notes")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.pdf")
	require.NoError(t, Write(path, Default()))

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()
	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
