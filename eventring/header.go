package eventring

import (
	"sync/atomic"
	"unsafe"
)

// headerMagic is the fixed 6-byte magic/version prefix of every ring
// image (spec.md §6; MONAD_EVENT_RING_HEADER_VERSION in
// original_source/category/core/event/event_ring.h).
var headerMagic = [6]byte{'R', 'I', 'N', 'G', '0', '1'}

// ringHeaderOnDisk is the exact byte layout of the fixed prefix and
// control block described in spec.md §6. It is never allocated by
// value; a *ringHeaderOnDisk is always a reinterpretation of bytes
// inside a memory-mapped region, so every access to a field that the
// writer or any reader can observe concurrently goes through
// sync/atomic, the discipline a shared control block always needs
// once more than one process can observe it.
type ringHeaderOnDisk struct {
	magic       [6]byte
	contentType uint16
	schemaHash  [32]byte

	descriptorCapacity uint64
	payloadBufSize     uint64
	contextAreaSize    uint64

	// Control block, two cache lines. lastSeqno and nextPayloadByte
	// are writer-owned; bufferWindowStart is published by the writer
	// and read by everyone, so it is kept on its own cache line
	// (spec.md §3).
	lastSeqno       uint64
	nextPayloadByte uint64
	_               [48]byte

	bufferWindowStart uint64
	_                 [56]byte
}

// ringHeaderSize is the fixed size of ringHeaderOnDisk: 64 bytes for
// magic/content-type/schema-hash/size, plus 128 bytes (two cache
// lines) for the control block.
const ringHeaderSize uint64 = 192

func init() {
	if unsafe.Sizeof(ringHeaderOnDisk{}) != uintptr(ringHeaderSize) {
		panic("eventring: ringHeaderOnDisk size drifted from the documented on-disk layout")
	}
	if unsafe.Sizeof(descriptorOnDisk{}) != uintptr(descriptorSize) {
		panic("eventring: descriptorOnDisk size drifted from the documented 64-byte layout")
	}
}

// content_type is written once at InitFile time, before the ring is
// ever shared, and never modified again, so it needs no atomic
// discipline (unlike the control block, which the writer mutates
// throughout the ring's lifetime while readers concurrently observe
// it).
func (h *ringHeaderOnDisk) loadContentType() ContentType {
	return ContentType(h.contentType)
}

func (h *ringHeaderOnDisk) storeContentType(ct ContentType) {
	h.contentType = uint16(ct)
}

func (h *ringHeaderOnDisk) loadSize() Size {
	return Size{
		DescriptorCapacity: atomic.LoadUint64(&h.descriptorCapacity),
		PayloadBufSize:     atomic.LoadUint64(&h.payloadBufSize),
		ContextAreaSize:    atomic.LoadUint64(&h.contextAreaSize),
	}
}

func (h *ringHeaderOnDisk) storeSize(s Size) {
	atomic.StoreUint64(&h.descriptorCapacity, s.DescriptorCapacity)
	atomic.StoreUint64(&h.payloadBufSize, s.PayloadBufSize)
	atomic.StoreUint64(&h.contextAreaSize, s.ContextAreaSize)
}

// Control block accessors. lastSeqno/nextPayloadByte are only ever
// written by the single recorder; reads from other goroutines/
// processes use acquire-equivalent atomic loads regardless, since Go
// gives sync/atomic loads/stores sequential-consistency semantics,
// which is at least as strong as the acquire/release spec.md
// requires.

func (h *ringHeaderOnDisk) loadLastSeqno() uint64 {
	return atomic.LoadUint64(&h.lastSeqno)
}

func (h *ringHeaderOnDisk) storeLastSeqno(v uint64) {
	atomic.StoreUint64(&h.lastSeqno, v)
}

func (h *ringHeaderOnDisk) loadNextPayloadByte() uint64 {
	return atomic.LoadUint64(&h.nextPayloadByte)
}

func (h *ringHeaderOnDisk) storeNextPayloadByte(v uint64) {
	atomic.StoreUint64(&h.nextPayloadByte, v)
}

// loadBufferWindowStart is the acquire load used by readers
// (payload_check in spec.md §4.5).
func (h *ringHeaderOnDisk) loadBufferWindowStart() uint64 {
	return atomic.LoadUint64(&h.bufferWindowStart)
}

// storeBufferWindowStart is the release store used by the writer when
// advancing the window (spec.md §4.4 step 4).
func (h *ringHeaderOnDisk) storeBufferWindowStart(v uint64) {
	atomic.StoreUint64(&h.bufferWindowStart, v)
}

// descriptorOnDisk is the exact 64-byte, cache-line-aligned shared
// memory layout of a single event descriptor (spec.md §3). Because
// every descriptorOnDisk in the ring lives at base+i*64 for a
// page-aligned base, each element is naturally 64-byte aligned
// without needing a Go alignment directive.
type descriptorOnDisk struct {
	seqno       uint64
	eventType   uint16
	_           uint16
	payloadSize uint32

	recordEpochNanos uint64
	payloadBufOffset uint64
	contentExt       [4]uint64
}

func (d *descriptorOnDisk) loadSeqno() uint64 {
	return atomic.LoadUint64(&d.seqno)
}

// storeSeqnoRelease is the publication linearization point (spec.md
// §4.4 step 8). It must be called only after every other field in the
// slot has been written.
func (d *descriptorOnDisk) storeSeqnoRelease(seqno uint64) {
	atomic.StoreUint64(&d.seqno, seqno)
}

// Descriptor is the caller-facing, by-value copy of an event
// descriptor returned by Iterator.TryCopy. It is a plain Go struct,
// not a view into shared memory: once returned, its fields cannot
// change underneath the caller even if the ring wraps.
type Descriptor struct {
	Seqno            uint64
	EventType        uint16
	PayloadSize      uint32
	RecordEpochNanos uint64
	PayloadBufOffset uint64
	ContentExt       [4]uint64
}

func (d *Descriptor) fromOnDisk(raw *descriptorOnDisk) {
	d.Seqno = raw.seqno
	d.EventType = raw.eventType
	d.PayloadSize = raw.payloadSize
	d.RecordEpochNanos = raw.recordEpochNanos
	d.PayloadBufOffset = raw.payloadBufOffset
	d.ContentExt = raw.contentExt
}
