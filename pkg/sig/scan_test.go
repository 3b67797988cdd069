package sig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buffer(n int, at int, pat ...byte) []byte {
	data := make([]byte, n)
	copy(data[at:], pat)
	return data
}

func TestFind_ExactMatch(t *testing.T) {
	data := buffer(1000, 50, 0xC2, 0x08, 0x00, 0x6A, 0x08)
	off, err := Find(data, Exact(0xC2, 0x08, 0x00, 0x6A, 0x08), Options{})
	require.NoError(t, err)
	assert.Equal(t, 50, off)
}

func TestFind_FirstMatchWins(t *testing.T) {
	data := buffer(64, 10, 0xAA, 0xBB)
	copy(data[40:], []byte{0xAA, 0xBB})

	off, err := Find(data, Exact(0xAA, 0xBB), Options{})
	require.NoError(t, err)
	assert.Equal(t, 10, off)

	off, err = Find(data, Exact(0xAA, 0xBB), Options{Start: 11})
	require.NoError(t, err)
	assert.Equal(t, 40, off)
}

func TestFind_Wildcard(t *testing.T) {
	s := Signature{Byte(0x8B), Byte(0x44), Any, Byte(0x04)}
	for _, b := range []byte{0x00, 0x24, 0xFF} {
		data := buffer(32, 7, 0x8B, 0x44, b, 0x04)
		off, err := Find(data, s, Options{})
		require.NoError(t, err, "wildcard byte 0x%02X", b)
		assert.Equal(t, 7, off)
	}
}

func TestFind_Mask(t *testing.T) {
	s := Exact(0x10)
	m := Mask{0xF0}

	off, err := Find([]byte{0x00, 0x1F}, s, Options{Mask: m})
	require.NoError(t, err)
	assert.Equal(t, 1, off)

	_, err = Find([]byte{0x00, 0x2F}, s, Options{Mask: m})
	require.ErrorIs(t, err, ErrPatternNotFound)
}

func TestFind_DoesNotModifySignature(t *testing.T) {
	s := Exact(0x1F, 0x2F)
	_, _ = Find([]byte{0x10, 0x20}, s, Options{Mask: Mask{0xF0, 0xF0}})
	assert.Equal(t, Exact(0x1F, 0x2F), s)
}

func TestFind_NotFound(t *testing.T) {
	_, err := Find(make([]byte, 128), Exact(0xDE, 0xAD), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPatternNotFound))

	var se *ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Start)
	assert.Equal(t, 126, se.End)
}

func TestFind_InvalidMask(t *testing.T) {
	data := buffer(16, 0, 0x01, 0x02)
	for _, m := range []Mask{{0xFF}, {0xFF, 0xFF, 0xFF}} {
		_, err := Find(data, Exact(0x01, 0x02), Options{Mask: m})
		require.ErrorIs(t, err, ErrInvalidMask)
		var me *MaskError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, 2, me.SignatureLen)
		assert.Equal(t, len(m), me.MaskLen)
	}
}

func TestFind_MatchAtEndOfBuffer(t *testing.T) {
	data := buffer(10, 7, 0x01, 0x02, 0x03)
	off, err := Find(data, Exact(0x01, 0x02, 0x03), Options{})
	require.NoError(t, err)
	assert.Equal(t, 7, off)
}

func TestFind_MaxScan(t *testing.T) {
	data := buffer(100, 20, 0x55, 0x66)

	_, err := Find(data, Exact(0x55, 0x66), Options{Start: 10, MaxScan: 10})
	require.ErrorIs(t, err, ErrPatternNotFound)

	off, err := Find(data, Exact(0x55, 0x66), Options{Start: 10, MaxScan: 11})
	require.NoError(t, err)
	assert.Equal(t, 20, off)
}

func TestFind_OutOfRange(t *testing.T) {
	data := make([]byte, 4)
	_, err := Find(data, Exact(0x00), Options{Start: 4})
	require.ErrorIs(t, err, ErrPatternNotFound)

	_, err = Find(data, Exact(0x00), Options{Start: -1})
	require.ErrorIs(t, err, ErrPatternNotFound)

	_, err = Find(data, Exact(0, 0, 0, 0, 0), Options{})
	require.ErrorIs(t, err, ErrPatternNotFound)

	_, err = Find(data, nil, Options{})
	require.ErrorIs(t, err, ErrEmptySignature)
}

func TestFindAll(t *testing.T) {
	data := []byte{0xAA, 0xAA, 0xAA, 0x00, 0xAA, 0xAA}
	offs, err := FindAll(data, Exact(0xAA, 0xAA), Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, offs)

	offs, err = FindAll(data, Exact(0xBB), Options{})
	require.NoError(t, err)
	assert.Empty(t, offs)

	_, err = FindAll(data, Exact(0xAA), Options{Mask: Mask{}})
	require.ErrorIs(t, err, ErrInvalidMask)
}

func TestFindUnique(t *testing.T) {
	data := buffer(32, 3, 0x12, 0x34)
	off, err := FindUnique(data, Exact(0x12, 0x34), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, off)

	copy(data[20:], []byte{0x12, 0x34})
	_, err = FindUnique(data, Exact(0x12, 0x34), Options{})
	require.ErrorIs(t, err, ErrAmbiguousMatch)
	var ae *AmbiguousMatchError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []int{3, 20}, ae.Offsets)

	// Bounding the range makes the first occurrence unique again.
	off, err = FindUnique(data, Exact(0x12, 0x34), Options{MaxScan: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, off)

	_, err = FindUnique(data, Exact(0x99), Options{})
	require.ErrorIs(t, err, ErrPatternNotFound)
}
