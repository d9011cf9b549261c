package filesystem

import (
	"fmt"
	"path"
	"strings"

	. "github.com/weberc2/blockfs/pkg/types"
)

// LookupPath resolves an absolute, slash-separated path from the root.
func (fs *FileSystem) LookupPath(p string) (InodeInfo, error) {
	if !strings.HasPrefix(p, "/") {
		return InodeInfo{}, fmt.Errorf(
			"looking up path `%s`: %w",
			p,
			NotAbsolutePathErr,
		)
	}

	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	info, err := fs.inodes.Get(InoRoot)
	if err != nil {
		return InodeInfo{}, fmt.Errorf("looking up path `%s`: %w", p, err)
	}
	for _, chunk := range strings.Split(path.Clean(p), "/") {
		if chunk == "" {
			continue
		}
		if info, err = fs.lookup(info.Ino, chunk); err != nil {
			return InodeInfo{}, fmt.Errorf(
				"looking up path `%s`: component `%s`: %w",
				p,
				chunk,
				err,
			)
		}
	}
	return info, nil
}

// SplitPath splits an absolute path into its parent directory and final
// component.
func SplitPath(p string) (dir string, name string, err error) {
	if !strings.HasPrefix(p, "/") {
		return "", "", fmt.Errorf("splitting path `%s`: %w", p, NotAbsolutePathErr)
	}
	dir, name = path.Split(path.Clean(p))
	if name == "" {
		return "", "", fmt.Errorf("splitting path `%s`: %w", p, EmptyNameErr)
	}
	return dir, name, nil
}

const (
	NotAbsolutePathErr ConstError = "not an absolute path"
)
