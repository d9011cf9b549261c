package encode

import (
	. "github.com/weberc2/blockfs/pkg/types"
)

// InodeInfoSlot returns the byte range of the `i`th record in the inode table
// block.
func InodeInfoSlot(i uint64) (start, end Byte) {
	start = Byte(i) * InodeInfoSize
	return start, start + InodeInfoSize
}

func EncodeInodeInfo(info *InodeInfo, b *[InodeInfoSize]byte) {
	p := b[:]
	putIno(p, inodeInoStart, info.Ino)
	putU32(p, inodeModeStart, uint32(info.Mode))
	putU32(p, inodePadStart, 0)
	putBlock(p, inodeDataBlockStart, info.DataBlock)
	putU64(p, inodeFileSizeStart, uint64(info.FileSize))
	putU64(p, inodeChildrenStart, info.DirChildrenCount)
}

func DecodeInodeInfo(info *InodeInfo, b *[InodeInfoSize]byte) {
	p := b[:]
	info.Ino = getIno(p, inodeInoStart)
	info.Mode = Mode(getU32(p, inodeModeStart))
	info.DataBlock = getBlock(p, inodeDataBlockStart)
	info.FileSize = Byte(getU64(p, inodeFileSizeStart))
	info.DirChildrenCount = getU64(p, inodeChildrenStart)
}

const (
	inodeInoStart = 0
	inodeInoSize  = 8
	inodeInoEnd   = inodeInoStart + inodeInoSize

	inodeModeStart = inodeInoEnd
	inodeModeSize  = 4
	inodeModeEnd   = inodeModeStart + inodeModeSize

	inodePadStart = inodeModeEnd
	inodePadSize  = 4
	inodePadEnd   = inodePadStart + inodePadSize

	inodeDataBlockStart = inodePadEnd
	inodeDataBlockSize  = 8
	inodeDataBlockEnd   = inodeDataBlockStart + inodeDataBlockSize

	inodeFileSizeStart = inodeDataBlockEnd
	inodeFileSizeSize  = 8
	inodeFileSizeEnd   = inodeFileSizeStart + inodeFileSizeSize

	inodeChildrenStart = inodeFileSizeEnd
	inodeChildrenSize  = 8
	inodeChildrenEnd   = inodeChildrenStart + inodeChildrenSize

	InodeInfoSize Byte = inodeChildrenEnd
)
