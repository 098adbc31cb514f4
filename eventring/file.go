package eventring

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"
)

// InitFile writes a fresh ring image of the given Size at ringOffset
// within f. f must already be open for writing and the file region
// starting at ringOffset must be at least size.CalcStorage() bytes
// (the caller is responsible for truncating/pre-sizing it — spec.md
// §4.2). name is used only to make returned errors identifiable; it
// has no on-disk effect.
//
// After InitFile returns successfully, every descriptor slot's seqno
// field is zero (the "slot never written" sentinel) and the control
// block is zeroed, so the ring is ready to be mapped and recorded
// into.
func InitFile(size Size, contentType ContentType, schemaHash [32]byte, f *os.File, ringOffset int64, name string) error {
	if f == nil {
		return newErr(ErrKindBadFile, fmt.Sprintf("%s: nil file", name), ErrBadFile)
	}
	if err := size.validate(); err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return newErr(ErrKindIO, fmt.Sprintf("%s: stat", name), err)
	}
	total := size.CalcStorage()
	if uint64(info.Size()-ringOffset) < total || info.Size() < ringOffset {
		return newErr(ErrKindBadFile,
			fmt.Sprintf("%s: file region at offset %d is smaller than required %d bytes", name, ringOffset, total),
			ErrBadFile)
	}

	existingMagic := make([]byte, len(headerMagic))
	if _, err := f.ReadAt(existingMagic, ringOffset); err == nil && bytes.Equal(existingMagic, headerMagic[:]) {
		return newErr(ErrKindAlreadyInitialized,
			fmt.Sprintf("%s: ring already initialized at offset %d", name, ringOffset),
			ErrAlreadyInitialized)
	}

	hdr := make([]byte, ringHeaderSize)
	raw := (*ringHeaderOnDisk)(unsafe.Pointer(&hdr[0]))
	raw.magic = headerMagic
	raw.storeContentType(contentType)
	raw.schemaHash = schemaHash
	raw.storeSize(size)
	raw.storeLastSeqno(0)
	raw.storeNextPayloadByte(0)
	raw.storeBufferWindowStart(0)

	if _, err := f.WriteAt(hdr, ringOffset); err != nil {
		return newErr(ErrKindIO, fmt.Sprintf("%s: write header", name), err)
	}

	// Zero the descriptor ring explicitly. On most filesystems a
	// freshly truncated file already reads as zero, but InitFile must
	// not rely on that (the file may be reused, or the caller may
	// have pre-sized it some other way), since a stray nonzero seqno
	// would violate the "slot never written" sentinel invariant
	// (spec.md §4.2).
	layout := computeLayout(size)
	if err := zeroRange(f, ringOffset+int64(layout.descStart), int64(layout.descEnd-layout.descStart)); err != nil {
		return newErr(ErrKindIO, fmt.Sprintf("%s: zero descriptor ring", name), err)
	}

	return nil
}

// zeroRange writes n zero bytes to f starting at offset, in bounded
// chunks so a huge descriptor ring doesn't require an equally huge
// in-memory buffer.
func zeroRange(f *os.File, offset, n int64) error {
	const chunk = 1 << 20
	buf := make([]byte, chunk)
	for n > 0 {
		w := chunk
		if int64(w) > n {
			w = int(n)
		}
		if _, err := f.WriteAt(buf[:w], offset); err != nil {
			return err
		}
		offset += int64(w)
		n -= int64(w)
	}
	return nil
}
