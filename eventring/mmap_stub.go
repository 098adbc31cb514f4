//go:build !linux || !(amd64 || arm64)

package eventring

import "errors"

// ErrUnsupportedPlatform is returned by Mmap on platforms where the
// event ring's memory-mapping primitives haven't been ported.
var ErrUnsupportedPlatform = errors.New("eventring: mmap not supported on this platform")

func mmapBytes(fd int, offset int64, length int, prot Prot, extraFlags MmapFlag) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func munmapBytes(mem []byte) error {
	return ErrUnsupportedPlatform
}
