package filesystem

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/weberc2/blockfs/pkg/alloc"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	"github.com/weberc2/blockfs/pkg/inode"
	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

type FormatParams struct {
	// BlockCount defaults to the device's block count.
	BlockCount Block

	// VolumeID defaults to a random UUID.
	VolumeID uuid.UUID
}

// Format lays out an empty filesystem on `device`: a root directory with
// no children and every block past the reserved region free. The superblock
// is written last so an interrupted format never mounts.
func Format(device block.Device, params FormatParams) (Superblock, error) {
	blockCount := params.BlockCount
	if blockCount == 0 {
		blockCount = device.BlockCount()
	}
	if blockCount <= FirstDataBlock ||
		blockCount > encode.MaxBlockCount ||
		blockCount > device.BlockCount() {
		return Superblock{}, fmt.Errorf(
			"formatting device: block count `%d` out of range (`%d`, "+
				"`%d`] for a `%d`-block device",
			blockCount,
			FirstDataBlock,
			encode.MaxBlockCount,
			device.BlockCount(),
		)
	}

	volumeID := params.VolumeID
	if volumeID == uuid.Nil {
		volumeID = uuid.New()
	}

	store := block.NewStore(device)
	root := rootInfo()
	if err := inode.Create(store, &root); err != nil {
		return Superblock{}, fmt.Errorf("formatting device: %w", err)
	}
	if err := store.Overwrite(
		RootDataBlock,
		new([BlockSize]byte),
	); err != nil {
		return Superblock{}, fmt.Errorf(
			"formatting device: zeroing root data block: %w",
			err,
		)
	}

	bitmap := alloc.NewBitmap(uint64(blockCount))
	for b := SuperblockBlock; b < FirstDataBlock; b++ {
		bitmap.Reserve(uint64(b))
	}
	sbm, err := superblock.Create(
		store,
		&Superblock{
			Version:    Version,
			Magic:      Magic,
			BlockSize:  BlockSize,
			InodeCount: 1,
			BlockCount: blockCount,
			VolumeID:   volumeID,
		},
		bitmap.Bytes(),
	)
	if err != nil {
		return Superblock{}, fmt.Errorf("formatting device: %w", err)
	}
	return sbm.Superblock(), nil
}
