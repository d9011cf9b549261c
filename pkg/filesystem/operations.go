package filesystem

import (
	"github.com/weberc2/blockfs/pkg/directory"
	. "github.com/weberc2/blockfs/pkg/types"
)

type FileInfo = directory.FileInfo
type Handle = directory.Handle

// Operations is the surface a host driver binds to.
type Operations interface {
	Lookup(parent Ino, name string) (InodeInfo, error)
	CreateFile(parent Ino, name string, mode Mode) (InodeInfo, error)
	CreateDirectory(parent Ino, name string, mode Mode) (InodeInfo, error)
	Read(ino Ino, offset, length Byte) ([]byte, error)
	Write(ino Ino, offset Byte, data []byte) (int, error)
	OpenDir(ino Ino, h *Handle) error
	Iterate(h *Handle, out *FileInfo) error
}

var _ Operations = (*FileSystem)(nil)
