package alloc

import (
	"github.com/weberc2/blockfs/pkg/math"
)

const bitsPerByte = 8

// Bitmap is an MSB-first bitset where a set bit means "allocated".
type Bitmap struct {
	bytes []byte
}

func NewBitmap(bits uint64) Bitmap {
	return Bitmap{make([]byte, math.DivRoundUp(bits, bitsPerByte))}
}

// BitmapFromBytes wraps `b` without copying; mutations are visible to the
// owner of `b`.
func BitmapFromBytes(b []byte) Bitmap { return Bitmap{b} }

// AllocFrom sets and returns the first clear bit in [start, limit).
func (bm Bitmap) AllocFrom(start, limit uint64) (uint64, bool) {
	limit = math.Min(limit, uint64(len(bm.bytes))*bitsPerByte)
	for value := start; value < limit; value++ {
		i, bit := value/bitsPerByte, uint8(value%bitsPerByte)
		if byteIsZero(bm.bytes[i], bit) {
			bm.bytes[i] = byteSetHigh(bm.bytes[i], bit)
			return value, true
		}
	}
	return 0, false
}

func (bm Bitmap) Free(value uint64) {
	b := &bm.bytes[value/bitsPerByte]
	*b = byteSetLow(*b, uint8(value%bitsPerByte))
}

func (bm Bitmap) Reserve(value uint64) {
	b := &bm.bytes[value/bitsPerByte]
	*b = byteSetHigh(*b, uint8(value%bitsPerByte))
}

func (bm Bitmap) IsSet(value uint64) bool {
	return !byteIsZero(bm.bytes[value/bitsPerByte], uint8(value%bitsPerByte))
}

// CountClear counts the clear bits in [start, limit).
func (bm Bitmap) CountClear(start, limit uint64) uint64 {
	limit = math.Min(limit, uint64(len(bm.bytes))*bitsPerByte)
	var n uint64
	for value := start; value < limit; value++ {
		if !bm.IsSet(value) {
			n++
		}
	}
	return n
}

func (bm Bitmap) Bytes() []byte { return bm.bytes }

func byteIsZero(byt byte, bit uint8) bool {
	return byt&(0b1000_0000>>bit) == 0
}

func byteSetHigh(byt byte, bit uint8) byte {
	return byt | (0b1000_0000 >> bit)
}

func byteSetLow(byt byte, bit uint8) byte {
	return byt & ^(0b1000_0000 >> bit)
}
