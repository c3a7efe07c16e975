package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmapSetGetClearMSBFirst(t *testing.T) {
	mem := make([]byte, 64)
	d := bitmapDesc{offset: 0, bits: 64}

	d.set(mem, 0)
	require.Equal(t, byte(0x80), mem[0], "bit 0 is the MSB of byte 0")

	d.set(mem, 7)
	require.Equal(t, byte(0x81), mem[0])

	d.set(mem, 8)
	require.Equal(t, byte(0x80), mem[1])

	require.True(t, d.get(mem, 0))
	require.True(t, d.get(mem, 7))
	require.False(t, d.get(mem, 1))

	d.clear(mem, 0)
	require.False(t, d.get(mem, 0))
	require.Equal(t, byte(0x01), mem[0])
}

func TestBitmapWordPadsOutOfRangeBytesAsAllocated(t *testing.T) {
	mem := make([]byte, 8)
	// bits=24 -> bytesLen=3, well short of a full 64-bit word.
	d := bitmapDesc{offset: 0, bits: 24}

	word := d.word(mem, 0)
	// Bytes 0..2 are real and zero (all free); bytes 3..7 are padding and
	// must read as 0xFF (allocated) so a scan never walks past bytesLen.
	require.Equal(t, uint64(0x000000FFFFFFFFFF), word)
}

func TestBitmapWordReflectsSetBits(t *testing.T) {
	mem := make([]byte, 8)
	d := bitmapDesc{offset: 0, bits: 64}

	// With nothing set, the first free bit (MSB-first index 0) is found
	// immediately.
	require.Equal(t, 0, ctz64FromMSB(^d.word(mem, 0)))

	// Setting bit 0 makes bit 1 the first free one.
	d.set(mem, 0)
	require.Equal(t, 1, ctz64FromMSB(^d.word(mem, 0)))
}

func TestBitmapNumWords(t *testing.T) {
	require.Equal(t, uint32(1), bitmapDesc{bits: 24}.numWords())
	require.Equal(t, uint32(1), bitmapDesc{bits: 64}.numWords())
	require.Equal(t, uint32(9), bitmapDesc{bits: 520}.numWords())
}
