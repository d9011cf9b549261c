// Package superblock loads, validates and persists the filesystem-wide
// record kept in block 0, including the free-block bitmap.
package superblock

import (
	"fmt"

	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	. "github.com/weberc2/blockfs/pkg/types"
)

// Manager owns the resident copy of the superblock. Callers mutate it in
// place and then call Persist.
type Manager struct {
	store      *block.Store
	superblock Superblock
	bitmap     []byte
}

// Mount reads and validates block 0. It never writes to the device.
func Mount(store *block.Store) (*Manager, error) {
	m := Manager{store: store}
	if err := store.View(SuperblockBlock, func(b *[BlockSize]byte) error {
		bitmap, err := encode.DecodeSuperblock(&m.superblock, b)
		m.bitmap = bitmap
		return err
	}); err != nil {
		return nil, fmt.Errorf("mounting superblock: %w", err)
	}

	if count := store.BlockCount(); m.superblock.BlockCount > count {
		return nil, fmt.Errorf(
			"mounting superblock: superblock block count `%d` exceeds "+
				"device block count `%d`: %w",
			m.superblock.BlockCount,
			count,
			InvalidFilesystemErr,
		)
	}

	if m.superblock.InodeCount > MaxObjects {
		return nil, fmt.Errorf(
			"mounting superblock: inode count `%d` exceeds max `%d`: %w",
			m.superblock.InodeCount,
			MaxObjects,
			InvalidFilesystemErr,
		)
	}

	return &m, nil
}

// Create writes a brand new superblock to block 0.
func Create(
	store *block.Store,
	superblock *Superblock,
	bitmap []byte,
) (*Manager, error) {
	if want := encode.BitmapSize(superblock.BlockCount); Byte(
		len(bitmap),
	) != want {
		return nil, fmt.Errorf(
			"creating superblock: bitmap has `%d` bytes; wanted `%d`",
			len(bitmap),
			want,
		)
	}
	m := Manager{store: store, superblock: *superblock, bitmap: bitmap}
	if err := m.Persist(); err != nil {
		return nil, fmt.Errorf("creating superblock: %w", err)
	}
	return &m, nil
}

// Persist writes the resident superblock back to block 0 and flushes.
func (m *Manager) Persist() error {
	var buf [BlockSize]byte
	encode.EncodeSuperblock(&m.superblock, m.bitmap, &buf)
	if err := m.store.Overwrite(SuperblockBlock, &buf); err != nil {
		return fmt.Errorf("persisting superblock: %w", err)
	}
	return nil
}

// Superblock returns a copy of the resident superblock.
func (m *Manager) Superblock() Superblock { return m.superblock }

func (m *Manager) InodeCount() uint64 { return m.superblock.InodeCount }

func (m *Manager) SetInodeCount(count uint64) {
	m.superblock.InodeCount = count
}

func (m *Manager) BlockCount() Block { return m.superblock.BlockCount }

// Bitmap returns the live free-block bitmap. Changes are persisted by the
// next call to Persist.
func (m *Manager) Bitmap() []byte { return m.bitmap }

func (m *Manager) Store() *block.Store { return m.store }
