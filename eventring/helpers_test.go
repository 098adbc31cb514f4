package eventring

import "unsafe"

// newTestRing builds a Ring directly over a heap-allocated buffer,
// bypassing InitFile/Mmap and the descriptor/payload shift bounds
// they enforce. It exists so the wraparound, window-advance and gap
// tests in recorder_iterator_test.go can use small, fast sizes instead
// of the minimums InitSize requires (65536 descriptors and a 128MiB
// payload buffer): the lock-free protocol under
// test only cares about a byte slice and a set of masks, not that the
// slice came from mmap.
func newTestRing(descCap, payloadBufSize, contextSize uint64) *Ring {
	size := Size{
		DescriptorCapacity: descCap,
		PayloadBufSize:     payloadBufSize,
		ContextAreaSize:    contextSize,
	}
	layout := computeLayout(size)
	mem := make([]byte, layout.total)

	hdr := (*ringHeaderOnDisk)(unsafe.Pointer(&mem[0]))
	hdr.magic = headerMagic
	hdr.storeContentType(ContentTypeTest)
	hdr.storeSize(size)

	r := &Ring{
		mmapProt:         ProtRead | ProtWrite,
		mem:              mem,
		header:           hdr,
		descriptors:      unsafe.Pointer(&mem[layout.descStart]),
		payloadBuf:       unsafe.Pointer(&mem[layout.payloadStart]),
		size:             size,
		contentType:      ContentTypeTest,
		descCapacityMask: descCap - 1,
		payloadBufMask:   payloadBufSize - 1,
		layout:           layout,
	}
	if contextSize > 0 {
		r.contextArea = unsafe.Pointer(&mem[layout.contextStart])
	}
	return r
}
