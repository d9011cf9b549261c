package block_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/testsupport"
	. "github.com/weberc2/blockfs/pkg/types"
)

func TestS3Device(t *testing.T) {
	client := testsupport.NewS3Fake()
	device := block.NewS3Device(client, "bucket", "My Volume", 16)
	require.Equal(t, "my-volume/blocks/3", device.Key(3))
	require.Equal(t, Block(16), device.BlockCount())

	// never-written blocks read back as zeroes
	p := new([BlockSize]byte)
	p[0] = 0xff
	require.NoError(t, device.ReadBlock(3, p))
	require.Equal(t, [BlockSize]byte{}, *p)

	store := block.NewStore(device)
	require.NoError(t, store.Update(3, func(b *[BlockSize]byte) error {
		copy(b[:], "hello")
		return nil
	}))
	key := [2]string{"bucket", "my-volume/blocks/3"}
	require.Contains(t, client.Objects, key)
	require.Len(t, client.Objects[key], int(BlockSize))

	require.NoError(t, device.ReadBlock(3, p))
	require.Equal(t, "hello", string(p[:5]))
}

func TestS3DeviceShortObject(t *testing.T) {
	client := testsupport.NewS3Fake()
	client.Objects[[2]string{"bucket", "vol/blocks/0"}] = []byte("short")
	device := block.NewS3Device(client, "bucket", "vol", 4)
	require.Error(t, device.ReadBlock(0, new([BlockSize]byte)))
}
