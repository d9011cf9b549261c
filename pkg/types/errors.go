package types

// ConstError is an error that can be declared as a constant and compared with
// `errors.Is`.
type ConstError string

func (err ConstError) Error() string { return string(err) }

const (
	InvalidFilesystemErr ConstError = "invalid filesystem"
	CapacityExceededErr  ConstError = "capacity exceeded"
	ResourceExhaustedErr ConstError = "resource exhausted"
	NotFoundErr          ConstError = "not found"
	IOFailureErr         ConstError = "io failure"
	CopyFailureErr       ConstError = "copy failure"

	NameTooLongErr     ConstError = "name too long"
	EmptyNameErr       ConstError = "empty name"
	InvalidNameErr     ConstError = "invalid name"
	NotADirErr         ConstError = "not a directory"
	NotARegularFileErr ConstError = "not a regular file"
)

// DirectoryFullErr is returned when a directory's data block has no room for
// another entry. It matches both itself and `CapacityExceededErr`.
var DirectoryFullErr error = directoryFullErr{}

type directoryFullErr struct{}

func (directoryFullErr) Error() string { return "directory full" }

func (directoryFullErr) Is(target error) bool {
	return target == CapacityExceededErr
}
