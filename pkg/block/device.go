package block

import (
	"fmt"
	stdio "io"
	"sync/atomic"

	"github.com/weberc2/blockfs/pkg/io"
	. "github.com/weberc2/blockfs/pkg/types"
)

// Device is the synchronous fixed-size block primitive everything else is
// built on.
type Device interface {
	ReadBlock(idx Block, p *[BlockSize]byte) error
	WriteBlock(idx Block, p *[BlockSize]byte) error
	Flush() error
	BlockCount() Block
}

// VolumeDevice addresses a byte volume in `BlockSize` units.
type VolumeDevice struct {
	volume     io.Volume
	blockCount Block
}

func NewVolumeDevice(volume io.Volume, blockCount Block) *VolumeDevice {
	return &VolumeDevice{volume: volume, blockCount: blockCount}
}

// NewMemoryDevice returns a zeroed in-memory device of `blockCount` blocks.
func NewMemoryDevice(blockCount Block) *VolumeDevice {
	return NewVolumeDevice(
		io.NewBuffer(make([]byte, Byte(blockCount)*BlockSize)),
		blockCount,
	)
}

func (d *VolumeDevice) Volume() io.Volume { return d.volume }

func (d *VolumeDevice) BlockCount() Block { return d.blockCount }

func (d *VolumeDevice) ReadBlock(idx Block, p *[BlockSize]byte) error {
	if err := d.volume.ReadAt(Byte(idx)*BlockSize, p[:]); err != nil {
		return fmt.Errorf("reading block `%d` from volume: %w", idx, err)
	}
	return nil
}

func (d *VolumeDevice) WriteBlock(idx Block, p *[BlockSize]byte) error {
	if err := d.volume.WriteAt(Byte(idx)*BlockSize, p[:]); err != nil {
		return fmt.Errorf("writing block `%d` to volume: %w", idx, err)
	}
	return nil
}

func (d *VolumeDevice) Flush() error {
	if syncer, ok := d.volume.(io.Syncer); ok {
		return syncer.Sync()
	}
	return nil
}

func (d *VolumeDevice) Close() error {
	if closer, ok := d.volume.(stdio.Closer); ok {
		return closer.Close()
	}
	return nil
}

// CountingDevice counts the calls made against the device it wraps.
type CountingDevice struct {
	Device
	reads   atomic.Uint64
	writes  atomic.Uint64
	flushes atomic.Uint64
}

func NewCountingDevice(inner Device) *CountingDevice {
	return &CountingDevice{Device: inner}
}

func (d *CountingDevice) ReadBlock(idx Block, p *[BlockSize]byte) error {
	d.reads.Add(1)
	return d.Device.ReadBlock(idx, p)
}

func (d *CountingDevice) WriteBlock(idx Block, p *[BlockSize]byte) error {
	d.writes.Add(1)
	return d.Device.WriteBlock(idx, p)
}

func (d *CountingDevice) Flush() error {
	d.flushes.Add(1)
	return d.Device.Flush()
}

func (d *CountingDevice) Close() error {
	if closer, ok := d.Device.(stdio.Closer); ok {
		return closer.Close()
	}
	return nil
}

type Stats struct {
	Reads   uint64 `json:"reads"`
	Writes  uint64 `json:"writes"`
	Flushes uint64 `json:"flushes"`
}

func (d *CountingDevice) Stats() Stats {
	return Stats{
		Reads:   d.reads.Load(),
		Writes:  d.writes.Load(),
		Flushes: d.flushes.Load(),
	}
}
