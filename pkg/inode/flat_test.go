package inode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/encode"
	"github.com/weberc2/blockfs/pkg/superblock"
	. "github.com/weberc2/blockfs/pkg/types"
)

var rootInfo = InodeInfo{
	Ino:       InoRoot,
	Mode:      ModeDir | 0o755,
	DataBlock: RootDataBlock,
}

func newTable(t *testing.T, device block.Device, inodeCount uint64) *FlatTable {
	t.Helper()
	store := block.NewStore(device)
	sb := Superblock{
		Version:    Version,
		Magic:      Magic,
		BlockSize:  BlockSize,
		InodeCount: inodeCount,
		BlockCount: device.BlockCount(),
	}
	manager, err := superblock.Create(
		store,
		&sb,
		make([]byte, encode.BitmapSize(sb.BlockCount)),
	)
	if err != nil {
		t.Fatalf("creating superblock: unexpected err: %v", err)
	}
	if inodeCount > 0 {
		if err := Create(store, &rootInfo); err != nil {
			t.Fatalf("creating inode table: unexpected err: %v", err)
		}
	}
	return NewFlatTable(store, manager)
}

func TestAppendGet(t *testing.T) {
	table := newTable(t, block.NewMemoryDevice(16), 1)

	wanted := InodeInfo{
		Ino:       NextIno(table.Count()),
		Mode:      ModeRegular | 0o644,
		DataBlock: 3,
	}
	if err := table.Append(wanted); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	if found := table.Count(); found != 2 {
		t.Fatalf("Count(): wanted `2`; found `%d`", found)
	}

	found, err := table.Get(wanted.Ino)
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(wanted, found); diff != "" {
		t.Fatalf("Get(): mismatch (-wanted +found):\n%s", diff)
	}

	root, err := table.Get(InoRoot)
	if err != nil {
		t.Fatalf("Get(InoRoot): unexpected err: %v", err)
	}
	if diff := cmp.Diff(rootInfo, root); diff != "" {
		t.Fatalf("Get(InoRoot): mismatch (-wanted +found):\n%s", diff)
	}
}

func TestAppendPersistsAcrossMount(t *testing.T) {
	device := block.NewMemoryDevice(16)
	table := newTable(t, device, 1)
	wanted := InodeInfo{Ino: 9, Mode: ModeRegular | 0o600, DataBlock: 3}
	if err := table.Append(wanted); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}

	store := block.NewStore(device)
	manager, err := superblock.Mount(store)
	if err != nil {
		t.Fatalf("superblock.Mount(): unexpected err: %v", err)
	}
	found, err := NewFlatTable(store, manager).Get(wanted.Ino)
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(wanted, found); diff != "" {
		t.Fatalf("Get(): mismatch (-wanted +found):\n%s", diff)
	}
}

func TestGetNotFound(t *testing.T) {
	table := newTable(t, block.NewMemoryDevice(16), 1)
	if _, err := table.Get(9); !errors.Is(err, NotFoundErr) {
		t.Fatalf("Get(): wanted `%v`; found `%v`", NotFoundErr, err)
	}
}

func TestUpdate(t *testing.T) {
	device := block.NewCountingDevice(block.NewMemoryDevice(16))
	table := newTable(t, device, 1)

	updated := rootInfo
	updated.DirChildrenCount = 3
	if err := table.Update(updated); err != nil {
		t.Fatalf("Update(): unexpected err: %v", err)
	}
	found, err := table.Get(InoRoot)
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(updated, found); diff != "" {
		t.Fatalf("Get(): mismatch (-wanted +found):\n%s", diff)
	}

	before := device.Stats().Writes
	err = table.Update(InodeInfo{Ino: 42, Mode: ModeRegular})
	if !errors.Is(err, NotFoundErr) {
		t.Fatalf("Update(): wanted `%v`; found `%v`", NotFoundErr, err)
	}
	if after := device.Stats().Writes; after != before {
		t.Fatalf("Update(): wanted no writes; found `%d`", after-before)
	}
}

func TestAppendCapacityExceeded(t *testing.T) {
	table := newTable(t, block.NewMemoryDevice(16), 1)
	for table.Count() < MaxObjects {
		if err := table.Append(InodeInfo{
			Ino:  NextIno(table.Count()),
			Mode: ModeRegular | 0o644,
		}); err != nil {
			t.Fatalf("Append(): unexpected err: %v", err)
		}
	}

	err := table.Append(InodeInfo{Ino: NextIno(table.Count())})
	if !errors.Is(err, CapacityExceededErr) {
		t.Fatalf("Append(): wanted `%v`; found `%v`", CapacityExceededErr, err)
	}
	if found := table.Count(); found != MaxObjects {
		t.Fatalf("Count(): wanted `%d`; found `%d`", MaxObjects, found)
	}

	// the last slot is still reachable by the scan
	last := NextIno(MaxObjects - 1)
	if _, err := table.Get(last); err != nil {
		t.Fatalf("Get(%d): unexpected err: %v", last, err)
	}
}

func TestSeed(t *testing.T) {
	table := newTable(t, block.NewMemoryDevice(16), 0)
	if _, err := table.Get(InoRoot); !errors.Is(err, NotFoundErr) {
		t.Fatalf("Get(InoRoot): wanted `%v`; found `%v`", NotFoundErr, err)
	}
	if err := table.Seed(rootInfo); err != nil {
		t.Fatalf("Seed(): unexpected err: %v", err)
	}
	if found := table.Count(); found != 1 {
		t.Fatalf("Count(): wanted `1`; found `%d`", found)
	}
	found, err := table.Get(InoRoot)
	if err != nil {
		t.Fatalf("Get(InoRoot): unexpected err: %v", err)
	}
	if diff := cmp.Diff(rootInfo, found); diff != "" {
		t.Fatalf("Get(InoRoot): mismatch (-wanted +found):\n%s", diff)
	}
}

func TestSeedNonEmptyTable(t *testing.T) {
	device := block.NewCountingDevice(block.NewMemoryDevice(16))
	table := newTable(t, device, 0)
	child := InodeInfo{
		Ino:       NextIno(1),
		Mode:      ModeRegular | 0o644,
		DataBlock: 3,
	}
	if err := table.Append(child); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	writes := device.Stats().Writes

	if err := table.Seed(rootInfo); !errors.Is(err, InvalidFilesystemErr) {
		t.Fatalf("Seed(): wanted `%v`; found `%v`", InvalidFilesystemErr, err)
	}
	if found := device.Stats().Writes; found != writes {
		t.Fatalf("Seed(): wanted no writes; found `%d`", found-writes)
	}
	if found := table.Count(); found != 1 {
		t.Fatalf("Count(): wanted `1`; found `%d`", found)
	}
	found, err := table.Get(child.Ino)
	if err != nil {
		t.Fatalf("Get(%d): unexpected err: %v", child.Ino, err)
	}
	if diff := cmp.Diff(child, found); diff != "" {
		t.Fatalf("Get(%d): mismatch (-wanted +found):\n%s", child.Ino, diff)
	}
}
