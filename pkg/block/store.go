package block

import (
	"fmt"
	stdio "io"
	"sync"

	. "github.com/weberc2/blockfs/pkg/types"
)

// Store hands out scoped block handles over a Device. It is not safe for
// concurrent mutation; callers serialize writers.
type Store struct {
	device Device
	pool   sync.Pool
}

func NewStore(device Device) *Store {
	return &Store{
		device: device,
		pool: sync.Pool{
			New: func() interface{} { return new([BlockSize]byte) },
		},
	}
}

func (s *Store) Device() Device { return s.device }

func (s *Store) BlockCount() Block { return s.device.BlockCount() }

// Handle is an acquired block. It must be released exactly once; release
// writes the block back and flushes the device if it was marked dirty.
type Handle struct {
	store    *Store
	index    Block
	data     *[BlockSize]byte
	dirty    bool
	released bool
}

func (h *Handle) Index() Block { return h.index }

func (h *Handle) Data() *[BlockSize]byte { return h.data }

func (h *Handle) MarkDirty() { h.dirty = true }

func (h *Handle) Release() error {
	if h.released {
		return nil
	}
	h.released = true
	defer h.store.pool.Put(h.data)

	if !h.dirty {
		return nil
	}
	if err := h.store.write(h.index, h.data); err != nil {
		return fmt.Errorf("releasing block `%d`: %w", h.index, err)
	}
	return nil
}

// Acquire loads block `idx` into a pooled buffer.
func (s *Store) Acquire(idx Block) (*Handle, error) {
	if err := s.check(idx); err != nil {
		return nil, fmt.Errorf("acquiring block `%d`: %w", idx, err)
	}
	data := s.pool.Get().(*[BlockSize]byte)
	if err := s.device.ReadBlock(idx, data); err != nil {
		s.pool.Put(data)
		return nil, fmt.Errorf(
			"acquiring block `%d`: %w: %w",
			idx,
			IOFailureErr,
			err,
		)
	}
	return &Handle{store: s, index: idx, data: data}, nil
}

// View calls `f` with the contents of block `idx`. The block is never
// written back.
func (s *Store) View(idx Block, f func(*[BlockSize]byte) error) error {
	h, err := s.Acquire(idx)
	if err != nil {
		return err
	}
	defer h.Release()
	return f(h.data)
}

// Update calls `f` with the contents of block `idx` and, if `f` succeeds,
// writes the block back and flushes. If `f` fails the block is left
// untouched on the device.
func (s *Store) Update(idx Block, f func(*[BlockSize]byte) error) (err error) {
	h, err := s.Acquire(idx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := h.Release(); err == nil {
			err = releaseErr
		}
	}()

	if err := f(h.data); err != nil {
		return err
	}
	h.MarkDirty()
	return nil
}

// Overwrite replaces block `idx` wholesale without reading it first.
func (s *Store) Overwrite(idx Block, p *[BlockSize]byte) error {
	if err := s.check(idx); err != nil {
		return fmt.Errorf("overwriting block `%d`: %w", idx, err)
	}
	return s.write(idx, p)
}

func (s *Store) Flush() error {
	if err := s.device.Flush(); err != nil {
		return fmt.Errorf("flushing device: %w: %w", IOFailureErr, err)
	}
	return nil
}

// Close flushes the device and closes it if it holds any resources.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if closer, ok := s.device.(stdio.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing device: %w: %w", IOFailureErr, err)
		}
	}
	return nil
}

func (s *Store) write(idx Block, p *[BlockSize]byte) error {
	if err := s.device.WriteBlock(idx, p); err != nil {
		return fmt.Errorf(
			"writing block `%d`: %w: %w",
			idx,
			IOFailureErr,
			err,
		)
	}
	if err := s.device.Flush(); err != nil {
		return fmt.Errorf(
			"flushing block `%d`: %w: %w",
			idx,
			IOFailureErr,
			err,
		)
	}
	return nil
}

func (s *Store) check(idx Block) error {
	if count := s.device.BlockCount(); idx >= count {
		return fmt.Errorf(
			"block index `%d` out of range (device has `%d` blocks): %w",
			idx,
			count,
			IOFailureErr,
		)
	}
	return nil
}
