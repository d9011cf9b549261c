package superblock

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	. "github.com/weberc2/blockfs/pkg/types"
)

func newSuperblock(blockCount Block) Superblock {
	return Superblock{
		Version:    Version,
		Magic:      Magic,
		BlockSize:  BlockSize,
		InodeCount: 1,
		BlockCount: blockCount,
		VolumeID:   uuid.New(),
	}
}

func TestCreateMount(t *testing.T) {
	store := block.NewStore(block.NewMemoryDevice(32))
	sb := newSuperblock(32)
	bitmap := make([]byte, encode.BitmapSize(32))
	bitmap[0] = 0b1110_0000

	created, err := Create(store, &sb, bitmap)
	if err != nil {
		t.Fatalf("Create(): unexpected err: %v", err)
	}
	created.SetInodeCount(5)
	created.Bitmap()[1] = 0b1000_0000
	if err := created.Persist(); err != nil {
		t.Fatalf("Persist(): unexpected err: %v", err)
	}

	mounted, err := Mount(store)
	if err != nil {
		t.Fatalf("Mount(): unexpected err: %v", err)
	}
	wanted := sb
	wanted.InodeCount = 5
	if diff := cmp.Diff(wanted, mounted.Superblock()); diff != "" {
		t.Fatalf("Mount(): mismatch (-wanted +found):\n%s", diff)
	}
	if diff := cmp.Diff(
		[]byte{0b1110_0000, 0b1000_0000, 0, 0},
		mounted.Bitmap(),
	); diff != "" {
		t.Fatalf("Mount() bitmap: mismatch (-wanted +found):\n%s", diff)
	}
}

func TestMountInvalid(t *testing.T) {
	type testCase struct {
		name       string
		superblock Superblock
		devBlocks  Block
	}

	badMagic := newSuperblock(32)
	badMagic.Magic = 0x1badb002
	badBlockSize := newSuperblock(32)
	badBlockSize.BlockSize = 512
	tooManyInodes := newSuperblock(32)
	tooManyInodes.InodeCount = MaxObjects + 1

	for _, testCase := range []testCase{
		{name: "bad-magic", superblock: badMagic, devBlocks: 32},
		{name: "bad-block-size", superblock: badBlockSize, devBlocks: 32},
		{name: "too-many-inodes", superblock: tooManyInodes, devBlocks: 32},
		{name: "device-too-small", superblock: newSuperblock(64), devBlocks: 32},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			device := block.NewCountingDevice(
				block.NewMemoryDevice(testCase.devBlocks),
			)
			var buf [BlockSize]byte
			encode.EncodeSuperblock(&testCase.superblock, nil, &buf)
			if err := device.WriteBlock(SuperblockBlock, &buf); err != nil {
				t.Fatalf("writing superblock: unexpected err: %v", err)
			}
			before := device.Stats().Writes

			_, err := Mount(block.NewStore(device))
			if !errors.Is(err, InvalidFilesystemErr) {
				t.Fatalf(
					"Mount(): wanted `%v`; found `%v`",
					InvalidFilesystemErr,
					err,
				)
			}
			if after := device.Stats(); after.Writes != before ||
				after.Flushes != 0 {
				t.Fatalf(
					"Mount(): wanted no writes; found `%d` writes and `%d` "+
						"flushes",
					after.Writes-before,
					after.Flushes,
				)
			}
		})
	}
}

func TestCreateBitmapSizeMismatch(t *testing.T) {
	store := block.NewStore(block.NewMemoryDevice(32))
	sb := newSuperblock(32)
	if _, err := Create(store, &sb, make([]byte, 1)); err == nil {
		t.Fatal("Create(): wanted error; found `nil`")
	}
}
