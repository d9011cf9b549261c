package types

// DirEntry is a (name, inode number) record packed into a directory's data
// block.
type DirEntry struct {
	Name string
	Ino  Ino
}
