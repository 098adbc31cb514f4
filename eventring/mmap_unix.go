//go:build linux && (amd64 || arm64)

package eventring

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapBytes maps length bytes of fd starting at offset with the
// requested Prot, OR'ing extraFlags with MAP_SHARED. x/sys/unix wraps
// the raw mmap/munmap syscalls with a maintained, more complete flag
// set, which is what lets extraFlags carry real platform hints like
// MAP_POPULATE/MAP_HUGETLB through to callers without eventring
// needing its own syscall shim.
func mmapBytes(fd int, offset int64, length int, prot Prot, extraFlags MmapFlag) ([]byte, error) {
	var sysProt int
	if prot&ProtRead != 0 {
		sysProt |= unix.PROT_READ
	}
	if prot&ProtWrite != 0 {
		sysProt |= unix.PROT_WRITE
	}
	flags := unix.MAP_SHARED | int(extraFlags)
	mem, err := unix.Mmap(fd, offset, length, sysProt, flags)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return mem, nil
}

func munmapBytes(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
