// Package diskutil contains helpers for naming and measuring files on disk.
package diskutil

import (
	"crypto/md5" //nolint:gosec // used for cache keys, not security
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	// InvalidFilename replaces names that are empty after trimming
	InvalidFilename = "(invalid)"

	// MaxFilenameLength leaves headroom under the 255 character limit of ext4 behind FUSE
	MaxFilenameLength = 240
)

// HashKeyForDisk returns the hex encoded md5 of key
func HashKeyForDisk(key string) string {
	sum := md5.Sum([]byte(key)) //nolint:gosec // used for cache keys, not security
	return hex.EncodeToString(sum[:])
}

// DirectorySize returns the total size of the regular files under path.
// A path naming a file returns that file's size.
func DirectorySize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// BuildValidFilename makes name valid on a FAT filesystem by replacing any
// invalid characters with '_'. Leading dots are trimmed, so the result is
// never a hidden file.
func BuildValidFilename(name string) string {
	name = strings.Trim(name, ". ")
	if name == "" {
		return InvalidFilename
	}

	var sb strings.Builder
	sb.Grow(len(name))
	n := 0
	for _, c := range name {
		if n == MaxFilenameLength {
			break
		}
		if isValidFatFilenameChar(c) {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
		n++
	}
	return sb.String()
}

func isValidFatFilenameChar(c rune) bool {
	if c <= 0x1f {
		return false
	}
	switch c {
	case '"', '*', '/', ':', '<', '>', '?', '\\', '|', 0x7f:
		return false
	}
	return true
}
