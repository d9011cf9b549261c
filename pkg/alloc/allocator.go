package alloc

import (
	"fmt"

	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

// BlockAllocator hands out data blocks from the superblock's bitmap.
// Allocation is monotonic: blocks are never returned.
type BlockAllocator struct {
	superblock *superblock.Manager
}

func NewBlockAllocator(superblock *superblock.Manager) *BlockAllocator {
	return &BlockAllocator{superblock: superblock}
}

// Allocate claims the lowest free block past the reserved region and
// persists the superblock.
func (a *BlockAllocator) Allocate() (Block, error) {
	bm := BitmapFromBytes(a.superblock.Bitmap())
	value, ok := bm.AllocFrom(
		uint64(FirstDataBlock),
		uint64(a.superblock.BlockCount()),
	)
	if !ok {
		return 0, fmt.Errorf(
			"allocating block: no free blocks among `%d`: %w",
			a.superblock.BlockCount(),
			ResourceExhaustedErr,
		)
	}

	if err := a.superblock.Persist(); err != nil {
		bm.Free(value)
		return 0, fmt.Errorf("allocating block `%d`: %w", value, err)
	}
	return Block(value), nil
}

// Free returns the number of blocks still available for allocation.
func (a *BlockAllocator) Free() uint64 {
	return BitmapFromBytes(a.superblock.Bitmap()).CountClear(
		uint64(FirstDataBlock),
		uint64(a.superblock.BlockCount()),
	)
}
