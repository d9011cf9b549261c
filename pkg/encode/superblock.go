package encode

import (
	"fmt"

	"github.com/weberc2/blockfs/pkg/math"
	. "github.com/weberc2/blockfs/pkg/types"
)

// MaxBlockCount is the largest device (in blocks) whose bitmap still fits in
// the superblock's block.
const MaxBlockCount = Block((BlockSize - superblockBitmapStart) * 8)

// BitmapSize returns the number of bitmap bytes needed to track
// `blockCount` blocks.
func BitmapSize(blockCount Block) Byte {
	return Byte(math.DivRoundUp(blockCount, 8))
}

func EncodeSuperblock(sb *Superblock, bitmap []byte, b *[BlockSize]byte) {
	p := b[:]
	putU64(p, superblockVersionStart, sb.Version)
	putU64(p, superblockMagicStart, sb.Magic)
	putU64(p, superblockBlockSizeStart, uint64(sb.BlockSize))
	putU64(p, superblockInodeCountStart, sb.InodeCount)
	putBlock(p, superblockBlockCountStart, sb.BlockCount)
	copy(p[superblockVolumeIDStart:superblockVolumeIDEnd], sb.VolumeID[:])
	copy(p[superblockBitmapStart:], bitmap)
}

// DecodeSuperblock decodes and validates the superblock in `b`, returning a
// copy of its free-block bitmap.
func DecodeSuperblock(sb *Superblock, b *[BlockSize]byte) ([]byte, error) {
	p := b[:]
	sb.Magic = getU64(p, superblockMagicStart)
	if sb.Magic != Magic {
		return nil, fmt.Errorf(
			"decoding superblock: decoded magic `%#x`: %w",
			sb.Magic,
			InvalidFilesystemErr,
		)
	}

	sb.BlockSize = Byte(getU64(p, superblockBlockSizeStart))
	if sb.BlockSize != BlockSize {
		return nil, fmt.Errorf(
			"decoding superblock: block size `%d` (expected `%d`): %w",
			sb.BlockSize,
			BlockSize,
			InvalidFilesystemErr,
		)
	}

	sb.BlockCount = getBlock(p, superblockBlockCountStart)
	if sb.BlockCount <= FirstDataBlock || sb.BlockCount > MaxBlockCount {
		return nil, fmt.Errorf(
			"decoding superblock: block count `%d` out of range "+
				"(`%d`, `%d`]: %w",
			sb.BlockCount,
			FirstDataBlock,
			MaxBlockCount,
			InvalidFilesystemErr,
		)
	}

	sb.Version = getU64(p, superblockVersionStart)
	sb.InodeCount = getU64(p, superblockInodeCountStart)
	copy(sb.VolumeID[:], p[superblockVolumeIDStart:superblockVolumeIDEnd])

	bitmap := make([]byte, BitmapSize(sb.BlockCount))
	copy(bitmap, p[superblockBitmapStart:])
	return bitmap, nil
}

const (
	superblockVersionStart = 0
	superblockVersionSize  = 8
	superblockVersionEnd   = superblockVersionStart + superblockVersionSize

	superblockMagicStart = superblockVersionEnd
	superblockMagicSize  = 8
	superblockMagicEnd   = superblockMagicStart + superblockMagicSize

	superblockBlockSizeStart = superblockMagicEnd
	superblockBlockSizeSize  = 8
	superblockBlockSizeEnd   = superblockBlockSizeStart + superblockBlockSizeSize

	superblockInodeCountStart = superblockBlockSizeEnd
	superblockInodeCountSize  = 8
	superblockInodeCountEnd   = superblockInodeCountStart + superblockInodeCountSize

	superblockBlockCountStart = superblockInodeCountEnd
	superblockBlockCountSize  = 8
	superblockBlockCountEnd   = superblockBlockCountStart + superblockBlockCountSize

	superblockVolumeIDStart = superblockBlockCountEnd
	superblockVolumeIDSize  = 16
	superblockVolumeIDEnd   = superblockVolumeIDStart + superblockVolumeIDSize

	superblockBitmapStart Byte = superblockVolumeIDEnd
)
