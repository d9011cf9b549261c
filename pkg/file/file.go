// Package file reads and writes a regular file's single data block.
package file

import (
	"fmt"

	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/inode"
	"github.com/weberc2/blockfs/pkg/math"
	. "github.com/weberc2/blockfs/pkg/types"
)

type DataManager struct {
	store *block.Store
	table inode.Table
}

func NewDataManager(store *block.Store, table inode.Table) *DataManager {
	return &DataManager{store: store, table: table}
}

// Read returns up to `length` bytes of the file. An `offset` at or past the
// end of the file yields an empty result. Otherwise the bytes are copied
// from the start of the data block: `offset` only decides end-of-stream and
// does not position the copy.
func (m *DataManager) Read(
	info *InodeInfo,
	offset Byte,
	length Byte,
) ([]byte, error) {
	if !info.Mode.IsRegular() {
		return nil, fmt.Errorf(
			"reading `%d` bytes from `%d` at offset `%d`: %w",
			length,
			info.Ino,
			offset,
			NotARegularFileErr,
		)
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf(
			"reading `%d` bytes from `%d` at offset `%d`: %w",
			length,
			info.Ino,
			offset,
			CopyFailureErr,
		)
	}
	if offset >= info.FileSize {
		return []byte{}, nil
	}

	n := math.Min(math.Min(length, info.FileSize-offset), BlockSize)
	out := make([]byte, n)
	if err := m.store.View(info.DataBlock, func(b *[BlockSize]byte) error {
		copy(out, b[:n])
		return nil
	}); err != nil {
		return nil, fmt.Errorf(
			"reading `%d` bytes from `%d` at offset `%d`: %w",
			length,
			info.Ino,
			offset,
			err,
		)
	}
	return out, nil
}

// Write copies `data` into the data block at `offset`, sets the file size to
// `offset + len(data)` and persists the block and then the inode record.
// Data that would run past the end of the block fails with
// `CopyFailureErr` and leaves the block untouched.
func (m *DataManager) Write(
	info *InodeInfo,
	offset Byte,
	data []byte,
) (int, error) {
	if !info.Mode.IsRegular() {
		return 0, fmt.Errorf(
			"writing `%d` bytes to `%d` at offset `%d`: %w",
			len(data),
			info.Ino,
			offset,
			NotARegularFileErr,
		)
	}

	if offset < 0 || offset > BlockSize ||
		Byte(len(data)) > BlockSize-offset {
		return 0, fmt.Errorf(
			"writing `%d` bytes to `%d` at offset `%d`: copying into "+
				"`%d`-byte block: %w",
			len(data),
			info.Ino,
			offset,
			BlockSize,
			CopyFailureErr,
		)
	}

	end := offset + Byte(len(data))
	if err := m.store.Update(info.DataBlock, func(b *[BlockSize]byte) error {
		copy(b[offset:end], data)
		return nil
	}); err != nil {
		return 0, fmt.Errorf(
			"writing `%d` bytes to `%d` at offset `%d`: %w",
			len(data),
			info.Ino,
			offset,
			err,
		)
	}

	size := info.FileSize
	info.FileSize = end
	if err := m.table.Update(*info); err != nil {
		info.FileSize = size
		return 0, fmt.Errorf(
			"writing `%d` bytes to `%d` at offset `%d`: %w",
			len(data),
			info.Ino,
			offset,
			err,
		)
	}
	return len(data), nil
}
