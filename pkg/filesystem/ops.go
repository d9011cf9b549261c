package filesystem

import (
	"fmt"

	. "github.com/weberc2/blockfs/pkg/types"
)

func (fs *FileSystem) Stat(ino Ino) (InodeInfo, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	info, err := fs.inodes.Get(ino)
	if err != nil {
		return InodeInfo{}, fmt.Errorf("stat-ing `%d`: %w", ino, err)
	}
	return info, nil
}

func (fs *FileSystem) Lookup(parent Ino, name string) (InodeInfo, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	info, err := fs.lookup(parent, name)
	if err != nil {
		return InodeInfo{}, fmt.Errorf(
			"looking up `%s` in `%d`: %w",
			name,
			parent,
			err,
		)
	}
	return info, nil
}

func (fs *FileSystem) lookup(parent Ino, name string) (InodeInfo, error) {
	dir, err := fs.inodes.Get(parent)
	if err != nil {
		return InodeInfo{}, err
	}
	ino, err := fs.directories.LookupChild(&dir, name)
	if err != nil {
		return InodeInfo{}, err
	}
	return fs.inodes.Get(ino)
}

// CreateFile creates an empty regular file named `name` in `parent`. Only
// the permission bits of `mode` are kept.
func (fs *FileSystem) CreateFile(
	parent Ino,
	name string,
	mode Mode,
) (InodeInfo, error) {
	info, err := fs.create(parent, name, ModeRegular|mode.Perm())
	if err != nil {
		return InodeInfo{}, fmt.Errorf(
			"creating file `%s` in `%d`: %w",
			name,
			parent,
			err,
		)
	}
	return info, nil
}

// CreateDirectory creates an empty directory named `name` in `parent`. Only
// the permission bits of `mode` are kept.
func (fs *FileSystem) CreateDirectory(
	parent Ino,
	name string,
	mode Mode,
) (InodeInfo, error) {
	info, err := fs.create(parent, name, ModeDir|mode.Perm())
	if err != nil {
		return InodeInfo{}, fmt.Errorf(
			"creating directory `%s` in `%d`: %w",
			name,
			parent,
			err,
		)
	}
	return info, nil
}

// create takes an object from unallocated to linked: it picks an inode
// number, allocates a data block, appends the inode record and then adds
// the directory entry. Every check that can fail without side effects runs
// first; a failure after allocation leaves the allocated block and any
// appended record in place.
func (fs *FileSystem) create(
	parent Ino,
	name string,
	mode Mode,
) (InodeInfo, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	dir, err := fs.inodes.Get(parent)
	if err != nil {
		return InodeInfo{}, err
	}
	if err := fs.directories.CheckAdd(&dir, name); err != nil {
		return InodeInfo{}, err
	}
	count := fs.inodes.Count()
	if count >= MaxObjects {
		return InodeInfo{}, fmt.Errorf(
			"inode table holds `%d` of `%d` records: %w",
			count,
			MaxObjects,
			CapacityExceededErr,
		)
	}

	data, err := fs.allocator.Allocate()
	if err != nil {
		return InodeInfo{}, err
	}
	if err := fs.store.Overwrite(data, new([BlockSize]byte)); err != nil {
		return InodeInfo{}, fmt.Errorf("zeroing data block: %w", err)
	}

	info := InodeInfo{Ino: NextIno(count), Mode: mode, DataBlock: data}
	if err := fs.inodes.Append(info); err != nil {
		return InodeInfo{}, err
	}
	if err := fs.directories.AddChild(&dir, name, info.Ino); err != nil {
		return InodeInfo{}, err
	}

	fs.logger.Debug(
		"created object",
		"parent", parent,
		"name", name,
		"ino", info.Ino,
		"mode", info.Mode,
		"block", info.DataBlock,
	)
	return info, nil
}

// Read returns up to `length` bytes of file `ino`. See file.DataManager.Read
// for how `offset` is interpreted.
func (fs *FileSystem) Read(ino Ino, offset, length Byte) ([]byte, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	info, err := fs.inodes.Get(ino)
	if err != nil {
		return nil, fmt.Errorf("reading `%d`: %w", ino, err)
	}
	return fs.files.Read(&info, offset, length)
}

func (fs *FileSystem) Write(ino Ino, offset Byte, data []byte) (int, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	info, err := fs.inodes.Get(ino)
	if err != nil {
		return 0, fmt.Errorf("writing `%d`: %w", ino, err)
	}
	n, err := fs.files.Write(&info, offset, data)
	if err != nil {
		return 0, err
	}
	fs.logger.Debug(
		"wrote file",
		"ino", ino,
		"offset", offset,
		"bytes", n,
		"size", info.FileSize,
	)
	return n, nil
}

func (fs *FileSystem) OpenDir(ino Ino, h *Handle) error {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return fs.directories.Open(ino, h)
}

// Iterate fills `out` with the next entry of the directory `h` was opened
// on, returning io.EOF once every entry has been visited.
func (fs *FileSystem) Iterate(h *Handle, out *FileInfo) error {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return fs.directories.ReadNext(h, out)
}

func (fs *FileSystem) List(ino Ino) ([]FileInfo, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return fs.directories.List(ino)
}
