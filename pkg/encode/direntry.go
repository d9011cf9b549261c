package encode

import (
	"bytes"

	. "github.com/weberc2/blockfs/pkg/types"
)

// DirEntriesPerBlock is how many entries fit in a directory's single data
// block.
const DirEntriesPerBlock = uint64(BlockSize / DirEntrySize)

func DirEntrySlot(i uint64) (start, end Byte) {
	start = Byte(i) * DirEntrySize
	return start, start + DirEntrySize
}

// EncodeDirEntry writes `entry` into `b`. Names longer than `MaxNameLen` are
// truncated; callers validate beforehand.
func EncodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	name := p[dirEntryNameStart:dirEntryNameEnd]
	n := copy(name[:MaxNameLen], entry.Name)
	for i := n; i < len(name); i++ {
		name[i] = 0
	}
	putIno(p, dirEntryInoStart, entry.Ino)
}

func DecodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	name := p[dirEntryNameStart:dirEntryNameEnd]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	entry.Name = string(name)
	entry.Ino = getIno(p, dirEntryInoStart)
}

const (
	dirEntryNameStart = 0
	dirEntryNameSize  = MaxNameLen + 1
	dirEntryNameEnd   = dirEntryNameStart + dirEntryNameSize

	dirEntryInoStart = dirEntryNameEnd
	dirEntryInoSize  = 8
	dirEntryInoEnd   = dirEntryInoStart + dirEntryInoSize

	DirEntrySize Byte = dirEntryInoEnd
)
