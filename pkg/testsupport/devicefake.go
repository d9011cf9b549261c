package testsupport

import (
	"github.com/weberc2/blockfs/pkg/block"
	. "github.com/weberc2/blockfs/pkg/types"
)

const DeviceFailureErr ConstError = "device failure"

// DeviceFake wraps a real device, records writes in order and can be told
// to fail reads or writes.
type DeviceFake struct {
	block.Device
	FailReads  bool
	FailWrites bool
	Writes     []Block
	Closed     bool
}

func NewDeviceFake(blockCount Block) *DeviceFake {
	return &DeviceFake{Device: block.NewMemoryDevice(blockCount)}
}

func (df *DeviceFake) ReadBlock(idx Block, p *[BlockSize]byte) error {
	if df.FailReads {
		return DeviceFailureErr
	}
	return df.Device.ReadBlock(idx, p)
}

func (df *DeviceFake) WriteBlock(idx Block, p *[BlockSize]byte) error {
	if df.FailWrites {
		return DeviceFailureErr
	}
	df.Writes = append(df.Writes, idx)
	return df.Device.WriteBlock(idx, p)
}

func (df *DeviceFake) Close() error {
	df.Closed = true
	return nil
}

// Reset forgets recorded writes.
func (df *DeviceFake) Reset() { df.Writes = nil }
