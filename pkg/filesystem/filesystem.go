package filesystem

import (
	"errors"
	"fmt"
	stdio "io"
	"log/slog"
	"sync"

	"github.com/weberc2/blockfs/pkg/alloc"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/directory"
	"github.com/weberc2/blockfs/pkg/file"
	"github.com/weberc2/blockfs/pkg/inode"
	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

// FileSystem is a mounted filesystem instance. `mutex` is the only
// exclusion domain: structural mutations and writes hold it exclusively,
// everything else holds it shared. None of the components it composes are
// safe for concurrent use on their own.
type FileSystem struct {
	mutex       sync.RWMutex
	store       *block.Store
	superblock  *superblock.Manager
	inodes      inode.Table
	allocator   *alloc.BlockAllocator
	directories *directory.Manager
	files       *file.DataManager
	logger      *slog.Logger
}

type Params struct {
	Logger *slog.Logger
}

func rootInfo() InodeInfo {
	return InodeInfo{
		Ino:       InoRoot,
		Mode:      ModeDir | 0o755,
		DataBlock: RootDataBlock,
	}
}

// Mount validates the superblock on `device` and loads the root directory,
// creating the root record if the device has never been mounted. Mount
// takes ownership of `device`: on failure the device is closed if it
// implements io.Closer.
func Mount(device block.Device, params Params) (*FileSystem, error) {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fs, err := mount(device, logger)
	if err != nil {
		if closer, ok := device.(stdio.Closer); ok {
			if closeErr := closer.Close(); closeErr != nil {
				logger.Warn(
					"closing device after failed mount",
					"err",
					closeErr,
				)
			}
		}
		return nil, fmt.Errorf("mounting filesystem: %w", err)
	}

	sb := fs.superblock.Superblock()
	logger.Info(
		"mounted filesystem",
		"volumeID", sb.VolumeID,
		"blocks", sb.BlockCount,
		"inodes", sb.InodeCount,
	)
	return fs, nil
}

func mount(device block.Device, logger *slog.Logger) (*FileSystem, error) {
	store := block.NewStore(device)
	sbm, err := superblock.Mount(store)
	if err != nil {
		return nil, err
	}

	table := inode.NewFlatTable(store, sbm)
	root, err := table.Get(InoRoot)
	if err != nil {
		if !errors.Is(err, NotFoundErr) {
			return nil, fmt.Errorf("loading root directory: %w", err)
		}
		root = rootInfo()
		if err := table.Seed(root); err != nil {
			return nil, fmt.Errorf("creating root directory: %w", err)
		}
		logger.Info("created root directory", "ino", root.Ino)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf(
			"loading root directory: root has mode `%s`: %w",
			root.Mode,
			InvalidFilesystemErr,
		)
	}

	return &FileSystem{
		store:       store,
		superblock:  sbm,
		inodes:      table,
		allocator:   alloc.NewBlockAllocator(sbm),
		directories: directory.NewManager(store, table),
		files:       file.NewDataManager(store, table),
		logger:      logger,
	}, nil
}

// Close flushes the device and releases it.
func (fs *FileSystem) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if err := fs.store.Close(); err != nil {
		return fmt.Errorf("closing filesystem: %w", err)
	}
	return nil
}

func (fs *FileSystem) Root() Ino { return InoRoot }

// Statfs summarizes the filesystem's capacity.
type Statfs struct {
	Superblock Superblock `json:"superblock"`
	FreeBlocks uint64     `json:"freeBlocks"`
	MaxObjects uint64     `json:"maxObjects"`
}

func (fs *FileSystem) Statfs() Statfs {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()
	return Statfs{
		Superblock: fs.superblock.Superblock(),
		FreeBlocks: fs.allocator.Free(),
		MaxObjects: MaxObjects,
	}
}
