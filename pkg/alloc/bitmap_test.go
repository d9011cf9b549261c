package alloc

import (
	"bytes"
	"testing"
)

func TestBitmapAllocFrom(t *testing.T) {
	type testCase struct {
		name        string
		bytes       []byte
		start       uint64
		limit       uint64
		wanted      uint64
		wantedOK    bool
		wantedBytes []byte
	}

	for _, testCase := range []testCase{{
		name:        "empty",
		bytes:       []byte{0, 0},
		start:       0,
		limit:       16,
		wanted:      0,
		wantedOK:    true,
		wantedBytes: []byte{0b1000_0000, 0},
	}, {
		name:        "skip-reserved",
		bytes:       []byte{0, 0},
		start:       3,
		limit:       16,
		wanted:      3,
		wantedOK:    true,
		wantedBytes: []byte{0b0001_0000, 0},
	}, {
		name:        "next-byte",
		bytes:       []byte{0xff, 0b1100_0000},
		start:       3,
		limit:       16,
		wanted:      10,
		wantedOK:    true,
		wantedBytes: []byte{0xff, 0b1110_0000},
	}, {
		name:        "limit-inside-byte",
		bytes:       []byte{0b1110_0000},
		start:       3,
		limit:       3,
		wantedOK:    false,
		wantedBytes: []byte{0b1110_0000},
	}, {
		name:        "full",
		bytes:       []byte{0xff, 0xff},
		start:       3,
		limit:       16,
		wantedOK:    false,
		wantedBytes: []byte{0xff, 0xff},
	}, {
		name:        "limit-beyond-bytes",
		bytes:       []byte{0xff},
		start:       0,
		limit:       100,
		wantedOK:    false,
		wantedBytes: []byte{0xff},
	}} {
		t.Run(testCase.name, func(t *testing.T) {
			bm := BitmapFromBytes(testCase.bytes)
			found, ok := bm.AllocFrom(testCase.start, testCase.limit)
			if ok != testCase.wantedOK {
				t.Fatalf(
					"Bitmap.AllocFrom(): wanted ok `%t`; found `%t`",
					testCase.wantedOK,
					ok,
				)
			}
			if ok && found != testCase.wanted {
				t.Fatalf(
					"Bitmap.AllocFrom(): wanted `%d`; found `%d`",
					testCase.wanted,
					found,
				)
			}
			if !bytes.Equal(testCase.wantedBytes, bm.Bytes()) {
				t.Fatalf(
					"Bitmap.Bytes(): wanted `%08b`; found `%08b`",
					testCase.wantedBytes,
					bm.Bytes(),
				)
			}
		})
	}
}

func TestBitmapReserveFree(t *testing.T) {
	bm := NewBitmap(12)
	if found := len(bm.Bytes()); found != 2 {
		t.Fatalf("NewBitmap(12): wanted `2` bytes; found `%d`", found)
	}
	bm.Reserve(9)
	if !bm.IsSet(9) {
		t.Fatal("Bitmap.IsSet(9): wanted `true` after Reserve")
	}
	if found := bm.CountClear(0, 12); found != 11 {
		t.Fatalf("Bitmap.CountClear(0, 12): wanted `11`; found `%d`", found)
	}
	bm.Free(9)
	if bm.IsSet(9) {
		t.Fatal("Bitmap.IsSet(9): wanted `false` after Free")
	}
}
