package types

type Block uint64

type Byte int64

const (
	BlockSize Byte = 4096

	SuperblockBlock Block = 0
	InodeTableBlock Block = 1
	RootDataBlock   Block = 2

	// FirstDataBlock is the first block past the reserved region; the
	// allocator never hands out anything below it.
	FirstDataBlock Block = 3
)
