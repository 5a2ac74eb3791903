package hashutil

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Reader is the subset of types.FS needed to checksum files
type Reader interface {
	ReadFile(name string) ([]byte, error)
}

var _ Reader = (types.FS)(nil)

// MD5Hex returns the lowercase hex MD5 digest of data
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FileMD5 returns the lowercase hex MD5 digest of a file's content
func FileMD5(fs Reader, path string) (string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return MD5Hex(data), nil
}
