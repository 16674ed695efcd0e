package pack

import (
	"tintcore/internal/infra/pack/fs"
)

// NewFilesystem opens an unpacked pack directory. The directory must exist.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
