package types

import (
	"fmt"
	"strings"
)

type Ino uint64

const (
	InoNil  Ino = 0
	InoRoot Ino = 1

	InoStart       Ino = 10
	ReservedInodes Ino = 3

	MaxObjects uint64 = 64
	MaxNameLen        = 255
)

// NextIno returns the inode number for the object created while the table
// holds `count` records. `count` only ever grows, so numbers are never reused.
func NextIno(count uint64) Ino {
	return Ino(count) + InoStart - ReservedInodes + 1
}

type Mode uint32

const (
	ModeTypeMask Mode = 0o170000
	ModeDir      Mode = 0o040000
	ModeRegular  Mode = 0o100000
	ModePerm     Mode = 0o777
)

func (m Mode) IsDir() bool     { return m&ModeTypeMask == ModeDir }
func (m Mode) IsRegular() bool { return m&ModeTypeMask == ModeRegular }
func (m Mode) Perm() Mode      { return m & ModePerm }

func (m Mode) FileType() FileType {
	switch m & ModeTypeMask {
	case ModeDir:
		return FileTypeDir
	case ModeRegular:
		return FileTypeRegular
	default:
		return FileTypeInvalid
	}
}

func (m Mode) String() string {
	return fmt.Sprintf("%s(%#o)", m.FileType(), uint32(m.Perm()))
}

// InodeInfo is the per-object metadata record kept in the inode table.
// `FileSize` is meaningful for regular files and `DirChildrenCount` for
// directories.
type InodeInfo struct {
	Ino              Ino    `json:"ino"`
	Mode             Mode   `json:"mode"`
	DataBlock        Block  `json:"dataBlock"`
	FileSize         Byte   `json:"fileSize"`
	DirChildrenCount uint64 `json:"dirChildrenCount"`
}

func (info *InodeInfo) IsDir() bool { return info.Mode.IsDir() }

type FileType uint8

const (
	FileTypeInvalid FileType = iota
	FileTypeRegular
	FileTypeDir
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeInvalid:
		return "Invalid"
	case FileTypeRegular:
		return "Regular"
	case FileTypeDir:
		return "Dir"
	default:
		panic(fmt.Sprintf("invalid file type: `%d`", ft))
	}
}

func (ft FileType) MarshalJSON() ([]byte, error) {
	s := ft.String()
	out := make([]byte, len(s)+2)
	out[0] = '"'
	out[len(out)-1] = '"'
	copy(out[1:], s)
	return out, nil
}

// ValidateName checks a directory entry name against the on-disk limits.
func ValidateName(name string) error {
	if name == "" {
		return EmptyNameErr
	}
	if i := strings.IndexByte(name, 0); i >= 0 {
		return fmt.Errorf(
			"validating name: NUL byte at index `%d`: %w",
			i,
			InvalidNameErr,
		)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf(
			"validating name of length `%d` (max `%d`): %w",
			len(name),
			MaxNameLen,
			NameTooLongErr,
		)
	}
	return nil
}
