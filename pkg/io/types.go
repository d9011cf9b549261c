package io

import (
	. "github.com/weberc2/blockfs/pkg/types"
)

type ReadAt interface {
	ReadAt(offset Byte, b []byte) error
}

type WriteAt interface {
	WriteAt(offset Byte, p []byte) error
}

type Volume interface {
	ReadAt
	WriteAt
}

// Syncer is implemented by volumes with a durable backing store.
type Syncer interface {
	Sync() error
}
