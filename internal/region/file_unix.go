// internal/region/file_unix.go
//go:build unix

package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenFile maps path as a fresh, zero-initialized region.
// Any previous content is discarded: opening is a cold boot.
// Other processes may map the same file with MapFile to observe it.
func OpenFile(path string) (*Region, error) {
	return mapFile(path, true)
}

// MapFile maps an existing region file without clearing it.
func MapFile(path string) (*Region, error) {
	return mapFile(path, false)
}

func mapFile(path string, fresh bool) (*Region, error) {
	flag := os.O_RDWR
	if fresh {
		flag |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	// The mapping outlives the descriptor.
	defer f.Close()

	if fresh {
		if err := f.Truncate(0); err != nil {
			return nil, fmt.Errorf("region: truncate %s: %w", path, err)
		}
		if err := f.Truncate(Size); err != nil {
			return nil, fmt.Errorf("region: size %s: %w", path, err)
		}
	} else {
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("region: stat %s: %w", path, err)
		}
		if st.Size() < Size {
			return nil, fmt.Errorf("region: %s too small: got=%d want>=%d", path, st.Size(), Size)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}

	r, err := wrap(data, func() error { return unix.Munmap(data) })
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	return r, nil
}
