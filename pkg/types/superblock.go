package types

import "github.com/google/uuid"

const (
	Magic   uint64 = 0x20200406
	Version uint64 = 1
)

// Superblock is the filesystem-wide metadata record stored in block 0. The
// free-block bitmap is kept alongside it by the superblock manager.
type Superblock struct {
	Version    uint64    `json:"version"`
	Magic      uint64    `json:"magic"`
	BlockSize  Byte      `json:"blockSize"`
	InodeCount uint64    `json:"inodeCount"`
	BlockCount Block     `json:"blockCount"`
	VolumeID   uuid.UUID `json:"volumeID"`
}
