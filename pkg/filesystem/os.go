package filesystem

import (
	"github.com/canastawiki/canasta-modules/pkg/types"
	"github.com/spf13/afero"
)

// NewOS creates a filesystem backed by the operating system
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}
