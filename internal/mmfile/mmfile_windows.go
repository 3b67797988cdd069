//go:build windows

package mmfile

import (
	"os"
)

// Map returns the contents of the file at path. Windows refuses to replace a
// file that has a live mapping, so the image is read into memory instead.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
