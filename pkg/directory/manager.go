// Package directory manages the flat entry array inside a directory's single
// data block. Entry `i` is valid iff `i < dir_children_count`.
package directory

import (
	"errors"
	"fmt"
	"io"

	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	"github.com/weberc2/blockfs/pkg/inode"
	. "github.com/weberc2/blockfs/pkg/types"
)

type Manager struct {
	store *block.Store
	table inode.Table
}

func NewManager(store *block.Store, table inode.Table) *Manager {
	return &Manager{store: store, table: table}
}

// LookupChild returns the inode number of the first entry in `parent` whose
// name matches `name` byte for byte.
func (m *Manager) LookupChild(parent *InodeInfo, name string) (Ino, error) {
	if !parent.IsDir() {
		return InoNil, fmt.Errorf(
			"looking up `%s` in `%d`: %w",
			name,
			parent.Ino,
			NotADirErr,
		)
	}

	ino := InoNil
	if err := m.store.View(parent.DataBlock, func(b *[BlockSize]byte) error {
		var entry DirEntry
		for i := uint64(0); i < parent.DirChildrenCount; i++ {
			getEntry(b, i, &entry)
			if entry.Name == name {
				ino = entry.Ino
				return nil
			}
		}
		return NotFoundErr
	}); err != nil {
		return InoNil, fmt.Errorf(
			"looking up `%s` in `%d`: %w",
			name,
			parent.Ino,
			err,
		)
	}
	return ino, nil
}

// AddChild appends an entry for `ino` to `parent`. The data block is written
// and flushed before the parent's new child count is persisted; if the
// inode table update fails the entry is on disk but not counted.
func (m *Manager) AddChild(parent *InodeInfo, name string, ino Ino) error {
	if err := m.checkAdd(parent, name); err != nil {
		return fmt.Errorf(
			"adding `%s` (`%d`) to `%d`: %w",
			name,
			ino,
			parent.Ino,
			err,
		)
	}

	if err := m.store.Update(parent.DataBlock, func(b *[BlockSize]byte) error {
		putEntry(b, parent.DirChildrenCount, &DirEntry{Name: name, Ino: ino})
		return nil
	}); err != nil {
		return fmt.Errorf(
			"adding `%s` (`%d`) to `%d`: %w",
			name,
			ino,
			parent.Ino,
			err,
		)
	}

	parent.DirChildrenCount++
	if err := m.table.Update(*parent); err != nil {
		parent.DirChildrenCount--
		return fmt.Errorf(
			"adding `%s` (`%d`) to `%d`: %w",
			name,
			ino,
			parent.Ino,
			err,
		)
	}
	return nil
}

// CheckAdd reports whether AddChild could succeed without touching the
// device.
func (m *Manager) CheckAdd(parent *InodeInfo, name string) error {
	return m.checkAdd(parent, name)
}

func (m *Manager) checkAdd(parent *InodeInfo, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !parent.IsDir() {
		return NotADirErr
	}
	if parent.DirChildrenCount >= encode.DirEntriesPerBlock {
		return fmt.Errorf(
			"directory holds `%d` entries: %w",
			parent.DirChildrenCount,
			DirectoryFullErr,
		)
	}
	return nil
}

// List returns every valid entry of `dir` in creation order.
func (m *Manager) List(dir Ino) ([]FileInfo, error) {
	var h Handle
	if err := m.Open(dir, &h); err != nil {
		return nil, fmt.Errorf("listing `%d`: %w", dir, err)
	}

	var infos []FileInfo
	for {
		var info FileInfo
		if err := m.ReadNext(&h, &info); err != nil {
			if errors.Is(err, io.EOF) {
				return infos, nil
			}
			return nil, fmt.Errorf("listing `%d`: %w", dir, err)
		}
		infos = append(infos, info)
	}
}

func putEntry(b *[BlockSize]byte, i uint64, entry *DirEntry) {
	start, end := encode.DirEntrySlot(i)
	encode.EncodeDirEntry(entry, (*[encode.DirEntrySize]byte)(b[start:end]))
}

func getEntry(b *[BlockSize]byte, i uint64, entry *DirEntry) {
	start, end := encode.DirEntrySlot(i)
	encode.DecodeDirEntry(entry, (*[encode.DirEntrySize]byte)(b[start:end]))
}
