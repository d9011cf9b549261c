package encode

import (
	"encoding/binary"

	. "github.com/weberc2/blockfs/pkg/types"
)

func putIno(b []byte, start Byte, u Ino) {
	putU64(b, start, uint64(u))
}

func getIno(b []byte, start Byte) Ino {
	return Ino(getU64(b, start))
}

func putBlock(b []byte, start Byte, u Block) {
	putU64(b, start, uint64(u))
}

func getBlock(b []byte, start Byte) Block {
	return Block(getU64(b, start))
}

func putU64(b []byte, start Byte, u uint64) {
	binary.LittleEndian.PutUint64(b[start:start+8], u)
}

func getU64(b []byte, start Byte) uint64 {
	return binary.LittleEndian.Uint64(b[start : start+8])
}

func putU32(b []byte, start Byte, u uint32) {
	binary.LittleEndian.PutUint32(b[start:start+4], u)
}

func getU32(b []byte, start Byte) uint32 {
	return binary.LittleEndian.Uint32(b[start : start+4])
}
