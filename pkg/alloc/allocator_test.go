package alloc

import (
	"errors"
	"testing"

	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

func newAllocator(t *testing.T, blockCount Block) (*BlockAllocator, *block.Store) {
	t.Helper()
	store := block.NewStore(block.NewMemoryDevice(blockCount))
	bm := NewBitmap(uint64(blockCount))
	for b := SuperblockBlock; b < FirstDataBlock; b++ {
		bm.Reserve(uint64(b))
	}
	sb := Superblock{
		Version:    Version,
		Magic:      Magic,
		BlockSize:  BlockSize,
		InodeCount: 1,
		BlockCount: blockCount,
	}
	manager, err := superblock.Create(store, &sb, bm.Bytes())
	if err != nil {
		t.Fatalf("creating superblock: unexpected err: %v", err)
	}
	return NewBlockAllocator(manager), store
}

func TestAllocateMonotonic(t *testing.T) {
	const blockCount = 20
	allocator, store := newAllocator(t, blockCount)
	if found := allocator.Free(); found != blockCount-uint64(FirstDataBlock) {
		t.Fatalf(
			"Free(): wanted `%d`; found `%d`",
			blockCount-uint64(FirstDataBlock),
			found,
		)
	}

	seen := map[Block]struct{}{}
	prev := Block(0)
	for i := 0; i < blockCount-int(FirstDataBlock); i++ {
		b, err := allocator.Allocate()
		if err != nil {
			t.Fatalf("Allocate() #%d: unexpected err: %v", i, err)
		}
		if b < FirstDataBlock {
			t.Fatalf("Allocate() #%d: returned reserved block `%d`", i, b)
		}
		if _, ok := seen[b]; ok {
			t.Fatalf("Allocate() #%d: returned duplicate block `%d`", i, b)
		}
		if b < prev {
			t.Fatalf(
				"Allocate() #%d: wanted at least `%d`; found `%d`",
				i,
				prev,
				b,
			)
		}
		seen[b] = struct{}{}
		prev = b
	}

	if _, err := allocator.Allocate(); !errors.Is(err, ResourceExhaustedErr) {
		t.Fatalf(
			"Allocate(): wanted `%v`; found `%v`",
			ResourceExhaustedErr,
			err,
		)
	}
	if found := allocator.Free(); found != 0 {
		t.Fatalf("Free(): wanted `0`; found `%d`", found)
	}

	// allocations survive a remount
	manager, err := superblock.Mount(store)
	if err != nil {
		t.Fatalf("superblock.Mount(): unexpected err: %v", err)
	}
	if found := NewBlockAllocator(manager).Free(); found != 0 {
		t.Fatalf("Free() after remount: wanted `0`; found `%d`", found)
	}
}

func TestAllocateFirstDataBlock(t *testing.T) {
	allocator, _ := newAllocator(t, 16)
	b, err := allocator.Allocate()
	if err != nil {
		t.Fatalf("Allocate(): unexpected err: %v", err)
	}
	if b != FirstDataBlock {
		t.Fatalf("Allocate(): wanted `%d`; found `%d`", FirstDataBlock, b)
	}
}
