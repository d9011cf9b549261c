package io

import (
	"fmt"
	"os"

	. "github.com/weberc2/blockfs/pkg/types"
)

// FileVolume is a volume backed by a regular file (or a block device node).
type FileVolume struct {
	file *os.File
}

// CreateFile creates (or truncates) the file at `path` and sizes it to
// `size` bytes.
func CreateFile(path string, size Byte) (*FileVolume, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating volume file `%s`: %w", path, err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		return nil, fmt.Errorf(
			"sizing volume file `%s` to `%d` bytes: %w",
			path,
			size,
			err,
		)
	}
	return &FileVolume{file}, nil
}

func OpenFile(path string) (*FileVolume, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening volume file `%s`: %w", path, err)
	}
	return &FileVolume{file}, nil
}

func (volume *FileVolume) Size() (Byte, error) {
	stat, err := volume.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat-ing file `%s`: %w", volume.file.Name(), err)
	}
	return Byte(stat.Size()), nil
}

func (volume *FileVolume) ReadAt(offset Byte, b []byte) error {
	if _, err := volume.file.ReadAt(b, int64(offset)); err != nil {
		return fmt.Errorf(
			"reading file `%s` at offset `%d`: %w",
			volume.file.Name(),
			offset,
			err,
		)
	}
	return nil
}

func (volume *FileVolume) WriteAt(offset Byte, p []byte) error {
	if _, err := volume.file.WriteAt(p, int64(offset)); err != nil {
		return fmt.Errorf(
			"writing file `%s` at offset `%d`: %w",
			volume.file.Name(),
			offset,
			err,
		)
	}
	return nil
}

func (volume *FileVolume) Sync() error {
	if err := volume.file.Sync(); err != nil {
		return fmt.Errorf("syncing file `%s`: %w", volume.file.Name(), err)
	}
	return nil
}

func (volume *FileVolume) Close() error {
	return volume.file.Close()
}
