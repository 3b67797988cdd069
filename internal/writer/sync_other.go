//go:build !linux && !freebsd && !darwin && !windows

package writer

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
