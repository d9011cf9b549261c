package directory

import (
	. "github.com/weberc2/blockfs/pkg/types"
)

type FileInfo struct {
	Ino      Ino      `json:"ino"`
	FileType FileType `json:"fileType"`
	Name     string   `json:"name"`
}

func (fi *FileInfo) Equal(other *FileInfo) bool {
	return fi.Ino == other.Ino && fi.FileType == other.FileType &&
		fi.Name == other.Name
}
