package inode

import (
	"fmt"

	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

// FlatTable keeps the records as a flat array in the inode table block and
// finds them with a linear scan over the first `inode_count` slots.
type FlatTable struct {
	store      *block.Store
	superblock *superblock.Manager
}

var _ Table = (*FlatTable)(nil)

func NewFlatTable(
	store *block.Store,
	superblock *superblock.Manager,
) *FlatTable {
	return &FlatTable{store: store, superblock: superblock}
}

// Create writes a fresh inode table containing only `root` in slot 0.
func Create(store *block.Store, root *InodeInfo) error {
	var buf [BlockSize]byte
	putSlot(&buf, 0, root)
	if err := store.Overwrite(InodeTableBlock, &buf); err != nil {
		return fmt.Errorf("creating inode table: %w", err)
	}
	return nil
}

func (table *FlatTable) Count() uint64 { return table.superblock.InodeCount() }

func (table *FlatTable) Get(ino Ino) (InodeInfo, error) {
	var info InodeInfo
	if err := table.store.View(
		InodeTableBlock,
		func(b *[BlockSize]byte) error {
			if _, ok := table.scan(b, ino, &info); !ok {
				return NotFoundErr
			}
			return nil
		},
	); err != nil {
		return InodeInfo{}, fmt.Errorf("getting inode `%d`: %w", ino, err)
	}
	return info, nil
}

func (table *FlatTable) Append(info InodeInfo) error {
	count := table.superblock.InodeCount()
	if count >= MaxObjects {
		return fmt.Errorf(
			"appending inode `%d`: table holds `%d` of `%d` records: %w",
			info.Ino,
			count,
			MaxObjects,
			CapacityExceededErr,
		)
	}

	if err := table.store.Update(
		InodeTableBlock,
		func(b *[BlockSize]byte) error {
			putSlot(b, count, &info)
			return nil
		},
	); err != nil {
		return fmt.Errorf("appending inode `%d`: %w", info.Ino, err)
	}

	table.superblock.SetInodeCount(count + 1)
	if err := table.superblock.Persist(); err != nil {
		table.superblock.SetInodeCount(count)
		return fmt.Errorf("appending inode `%d`: %w", info.Ino, err)
	}
	return nil
}

func (table *FlatTable) Update(info InodeInfo) error {
	if err := table.store.Update(
		InodeTableBlock,
		func(b *[BlockSize]byte) error {
			var found InodeInfo
			i, ok := table.scan(b, info.Ino, &found)
			if !ok {
				return NotFoundErr
			}
			putSlot(b, i, &info)
			return nil
		},
	); err != nil {
		return fmt.Errorf("updating inode `%d`: %w", info.Ino, err)
	}
	return nil
}

// Seed installs `root` in slot 0 of an empty table. It is used on the first
// mount of a device whose formatter didn't write a root record. A table that
// already holds records but no root is corrupt and is left alone.
func (table *FlatTable) Seed(root InodeInfo) error {
	if count := table.superblock.InodeCount(); count != 0 {
		return fmt.Errorf(
			"seeding root inode `%d`: table already holds `%d` records: %w",
			root.Ino,
			count,
			InvalidFilesystemErr,
		)
	}
	if err := table.store.Update(
		InodeTableBlock,
		func(b *[BlockSize]byte) error {
			putSlot(b, 0, &root)
			return nil
		},
	); err != nil {
		return fmt.Errorf("seeding root inode `%d`: %w", root.Ino, err)
	}

	table.superblock.SetInodeCount(1)
	if err := table.superblock.Persist(); err != nil {
		table.superblock.SetInodeCount(0)
		return fmt.Errorf("seeding root inode `%d`: %w", root.Ino, err)
	}
	return nil
}

func (table *FlatTable) scan(
	b *[BlockSize]byte,
	ino Ino,
	out *InodeInfo,
) (uint64, bool) {
	count := table.superblock.InodeCount()
	for i := uint64(0); i < count; i++ {
		getSlot(b, i, out)
		if out.Ino == ino {
			return i, true
		}
	}
	return 0, false
}

func putSlot(b *[BlockSize]byte, i uint64, info *InodeInfo) {
	start, end := encode.InodeInfoSlot(i)
	encode.EncodeInodeInfo(info, (*[encode.InodeInfoSize]byte)(b[start:end]))
}

func getSlot(b *[BlockSize]byte, i uint64, out *InodeInfo) {
	start, end := encode.InodeInfoSlot(i)
	encode.DecodeInodeInfo(out, (*[encode.InodeInfoSize]byte)(b[start:end]))
}
