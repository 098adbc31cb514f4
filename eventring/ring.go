package eventring

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"
)

// Prot is a protection bitmask requested for a mapping. It mirrors
// the POSIX PROT_* flags without forcing every caller to import
// golang.org/x/sys/unix directly.
type Prot int

const (
	ProtRead Prot = 1 << iota
	ProtWrite
)

// MmapFlag carries OS-specific extra mmap flags (e.g. populate/huge
// page hints) through to the platform mmap implementation, OR'ed with
// MAP_SHARED by that implementation.
type MmapFlag int

// Ring is a live, per-process mapping of an event ring. It is valid
// until Unmap is called; the underlying file may be unlinked once all
// the mappings a set of cooperating processes need have been
// established (spec.md §3, "Live ring handle").
type Ring struct {
	mmapProt Prot
	mem      []byte

	header      *ringHeaderOnDisk
	descriptors unsafe.Pointer
	payloadBuf  unsafe.Pointer
	contextArea unsafe.Pointer

	size        Size
	contentType ContentType
	schemaHash  [32]byte

	descCapacityMask uint64
	payloadBufMask   uint64

	layout layoutOffsets
}

// Mmap maps the ring image stored at ringOffset within f into the
// current address space with the requested protection. mmapExtraFlags
// is OR'ed with the platform's MAP_SHARED. If expectSchemaHash is
// non-nil, the mapped ring's schema hash must equal it exactly or
// Mmap fails with ErrSchemaMismatch and performs no mapping.
func Mmap(f *os.File, prot Prot, mmapExtraFlags MmapFlag, ringOffset int64, name string, expectSchemaHash *[32]byte) (*Ring, error) {
	if f == nil {
		return nil, newErr(ErrKindBadFile, fmt.Sprintf("%s: nil file", name), ErrBadFile)
	}

	hdrBuf := make([]byte, ringHeaderSize)
	if _, err := f.ReadAt(hdrBuf, ringOffset); err != nil {
		return nil, newErr(ErrKindIO, fmt.Sprintf("%s: read header", name), err)
	}
	peek := (*ringHeaderOnDisk)(unsafe.Pointer(&hdrBuf[0]))
	if !bytes.Equal(peek.magic[:], headerMagic[:]) {
		return nil, newErr(ErrKindBadMagic, fmt.Sprintf("%s: bad magic/version", name), ErrBadMagic)
	}
	size := peek.loadSize()
	if err := size.validate(); err != nil {
		return nil, err
	}
	if expectSchemaHash != nil && peek.schemaHash != *expectSchemaHash {
		return nil, newErr(ErrKindSchemaMismatch, fmt.Sprintf("%s: schema hash mismatch", name), ErrSchemaMismatch)
	}

	layout := computeLayout(size)
	mem, err := mmapBytes(int(f.Fd()), ringOffset, int(layout.total), prot, mmapExtraFlags)
	if err != nil {
		return nil, newErr(ErrKindIO, fmt.Sprintf("%s: mmap", name), err)
	}

	r := &Ring{
		mmapProt:         prot,
		mem:              mem,
		header:           (*ringHeaderOnDisk)(unsafe.Pointer(&mem[0])),
		descriptors:      unsafe.Pointer(&mem[layout.descStart]),
		payloadBuf:       unsafe.Pointer(&mem[layout.payloadStart]),
		size:             size,
		contentType:      peek.loadContentType(),
		schemaHash:       peek.schemaHash,
		descCapacityMask: size.DescriptorCapacity - 1,
		payloadBufMask:   size.PayloadBufSize - 1,
		layout:           layout,
	}
	if size.ContextAreaSize > 0 {
		r.contextArea = unsafe.Pointer(&mem[layout.contextStart])
	}
	return r, nil
}

// Unmap releases the ring's mappings and invalidates the handle. The
// Ring must not be used again after Unmap returns.
func (r *Ring) Unmap() error {
	if r.mem == nil {
		return nil
	}
	err := munmapBytes(r.mem)
	r.mem = nil
	r.header = nil
	r.descriptors = nil
	r.payloadBuf = nil
	r.contextArea = nil
	return err
}

// Size returns the ring's descriptor/payload/context sizing.
func (r *Ring) Size() Size { return r.size }

// ContentType returns the content type declared when the ring was
// initialized.
func (r *Ring) ContentType() ContentType { return r.contentType }

// SchemaHash returns the 32-byte schema hash pinned in the ring's
// header at creation time.
func (r *Ring) SchemaHash() [32]byte { return r.schemaHash }

// ContextArea returns a byte slice view of the ring's opaque context
// area, or nil if the ring was created with zero context pages. Its
// contents and meaning are entirely up to the ring's content type;
// the core never interprets them.
func (r *Ring) ContextArea() []byte {
	if r.contextArea == nil {
		return nil
	}
	return unsafe.Slice((*byte)(r.contextArea), int(r.size.ContextAreaSize))
}

// RingStats is a snapshot of a ring's control block, for diagnostics
// (e.g. "eventringctl inspect"). It is read with the same atomic
// loads a live reader uses, but is not itself kept in sync: it is a
// point-in-time copy.
type RingStats struct {
	LastSeqno         uint64
	NextPayloadByte   uint64
	BufferWindowStart uint64
}

// Stats returns a snapshot of the ring's control block.
func (r *Ring) Stats() RingStats {
	return RingStats{
		LastSeqno:         r.header.loadLastSeqno(),
		NextPayloadByte:   r.header.loadNextPayloadByte(),
		BufferWindowStart: r.header.loadBufferWindowStart(),
	}
}

func (r *Ring) descriptorSlot(seqno uint64) *descriptorOnDisk {
	idx := (seqno - 1) & r.descCapacityMask
	return (*descriptorOnDisk)(unsafe.Add(r.descriptors, uintptr(idx)*uintptr(descriptorSize)))
}

func (r *Ring) payloadAt(offset uint64) unsafe.Pointer {
	return unsafe.Add(r.payloadBuf, offset&r.payloadBufMask)
}
