package inode

import (
	. "github.com/weberc2/blockfs/pkg/types"
)

// Table is the inode metadata store. Records are keyed by inode number
// alone and are never removed.
type Table interface {
	// Get returns a copy of the record for `ino` or `NotFoundErr`.
	Get(ino Ino) (InodeInfo, error)

	// Append adds a record, failing with `CapacityExceededErr` when the
	// table already holds `MaxObjects` records.
	Append(info InodeInfo) error

	// Update overwrites the record whose inode number matches `info.Ino`.
	Update(info InodeInfo) error

	Count() uint64
}
