package block

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	. "github.com/weberc2/blockfs/pkg/types"
)

func TestPGDevice(t *testing.T) {
	if os.Getenv("PG_HOST") == "" {
		t.Skip("PG_HOST not set; skipping postgres device test")
	}

	device, err := OpenEnv("pg device test", 8)
	require.NoError(t, err)
	defer device.Close()
	require.NoError(t, device.EnsureTable())
	require.NoError(t, device.ClearVolume())

	p := new([BlockSize]byte)
	require.NoError(t, device.ReadBlock(5, p))
	require.Equal(t, [BlockSize]byte{}, *p)

	store := NewStore(device)
	require.NoError(t, store.Update(5, func(b *[BlockSize]byte) error {
		copy(b[:], "hello")
		return nil
	}))
	require.NoError(t, store.Update(5, func(b *[BlockSize]byte) error {
		copy(b[5:], "world")
		return nil
	}))

	require.NoError(t, device.ReadBlock(5, p))
	require.Equal(t, "helloworld", string(p[:10]))
}
