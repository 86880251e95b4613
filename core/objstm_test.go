package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStreamRoundTrip(t *testing.T) {
	stream, err := BuildObjectStream([]IndirectObject{
		{Ref: IndirectRef{Number: 10}, Object: Dict{"Subtype": Name("FreeText"), "Contents": String("First")}},
		{Ref: IndirectRef{Number: 11}, Object: Array{Int(1), Int(2)}},
		{Ref: IndirectRef{Number: 12}, Object: Int(42)},
	})
	require.NoError(t, err)

	os, err := NewObjectStream(stream)
	require.NoError(t, err)
	assert.Equal(t, 3, os.N())

	nums, err := os.ObjectNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, nums)

	obj, num, err := os.GetObjectByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, 11, num)
	assert.Equal(t, Array{Int(1), Int(2)}, obj)

	obj, err = os.GetObjectByNumber(10)
	require.NoError(t, err)
	assert.Equal(t, String("First"), obj.(Dict)["Contents"])

	obj, err = os.GetObjectByNumber(12)
	require.NoError(t, err)
	assert.Equal(t, Int(42), obj)

	_, err = os.GetObjectByNumber(99)
	assert.Error(t, err)
	_, _, err = os.GetObjectByIndex(3)
	assert.Error(t, err)
}

func TestNewObjectStreamValidation(t *testing.T) {
	_, err := NewObjectStream(nil)
	assert.Error(t, err)

	_, err = NewObjectStream(&Stream{Dict: Dict{"Type": Name("XRef")}})
	assert.Error(t, err)

	_, err = NewObjectStream(&Stream{Dict: Dict{"Type": Name("ObjStm"), "N": Int(1)}})
	assert.Error(t, err, "missing /First")
}

func TestBuildObjectStreamRejectsStreams(t *testing.T) {
	_, err := BuildObjectStream([]IndirectObject{{Ref: IndirectRef{Number: 1}, Object: &Stream{}}})
	assert.Error(t, err)
}
