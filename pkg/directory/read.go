package directory

import (
	"fmt"
	"io"

	. "github.com/weberc2/blockfs/pkg/types"
)

// Handle is a caller-owned cursor over a directory's entries. The manager
// keeps no enumeration state of its own, so a handle can be stored and
// resumed later with Seek.
type Handle struct {
	ino    Ino
	offset uint64
}

func NewHandle(ino Ino, offset uint64) Handle {
	return Handle{ino: ino, offset: offset}
}

func (h *Handle) Ino() Ino { return h.ino }

// Offset is the index of the next entry ReadNext will return.
func (h *Handle) Offset() uint64 { return h.offset }

func (h *Handle) Seek(offset uint64) { h.offset = offset }

// Open points `h` at the first entry of `dir`.
func (m *Manager) Open(dir Ino, h *Handle) error {
	info, err := m.table.Get(dir)
	if err != nil {
		return fmt.Errorf("opening directory `%d`: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening directory `%d`: %w", dir, NotADirErr)
	}
	*h = Handle{ino: dir}
	return nil
}

// ReadNext fills `out` with the entry at the handle's offset and advances
// the handle. It returns `io.EOF` when no entries remain.
func (m *Manager) ReadNext(h *Handle, out *FileInfo) error {
	dir, err := m.table.Get(h.ino)
	if err != nil {
		return fmt.Errorf(
			"reading entry from `%d` at offset `%d`: %w",
			h.ino,
			h.offset,
			err,
		)
	}
	if h.offset >= dir.DirChildrenCount {
		return io.EOF
	}

	var entry DirEntry
	if err := m.store.View(dir.DataBlock, func(b *[BlockSize]byte) error {
		getEntry(b, h.offset, &entry)
		return nil
	}); err != nil {
		return fmt.Errorf(
			"reading entry from `%d` at offset `%d`: %w",
			h.ino,
			h.offset,
			err,
		)
	}

	child, err := m.table.Get(entry.Ino)
	if err != nil {
		return fmt.Errorf(
			"reading entry from `%d` at offset `%d`: fetching file type "+
				"for ino `%d`: %w",
			h.ino,
			h.offset,
			entry.Ino,
			err,
		)
	}

	h.offset++
	out.Ino = entry.Ino
	out.FileType = child.Mode.FileType()
	out.Name = entry.Name
	return nil
}
