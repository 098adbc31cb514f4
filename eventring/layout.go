package eventring

import "fmt"

// Size limits and alignment constants, pinned to the values in the
// original Monad event ring header (see SPEC_FULL.md §4 "Supplemented
// features").
const (
	MinDescriptorsShift uint8 = 16
	MaxDescriptorsShift uint8 = 32

	MinPayloadBufShift uint8 = 27
	MaxPayloadBufShift uint8 = 40

	// PayloadAlign is the alignment of every allocation made from a
	// ring's payload buffer (spec.md §3, MONAD_EVENT_PAYLOAD_ALIGN).
	PayloadAlign uint64 = 16

	// WindowIncr is the granularity at which buffer_window_start
	// advances (spec.md §4.4 step 4, MONAD_EVENT_WINDOW_INCR).
	WindowIncr uint64 = 1 << 24

	// largePageSize is the unit ContextLargePages is denominated in.
	// x86-64 and arm64 Linux both support 2MiB huge pages; this is a
	// sizing convention, not a hard requirement that huge pages are
	// actually backing the mapping.
	largePageSize uint64 = 2 << 20

	// descriptorSize is the fixed, cache-line-aligned size of a
	// single event descriptor (spec.md §3).
	descriptorSize uint64 = 64

	filePageSize uint64 = 4096
)

// Size describes the byte layout of an event ring's primary data
// structures, as returned by InitSize and stored verbatim in the
// ring's on-disk header.
type Size struct {
	DescriptorCapacity uint64
	PayloadBufSize     uint64
	ContextAreaSize    uint64
}

// InitSize validates descriptorsShift and payloadBufShift against the
// documented bounds and returns the corresponding Size. contextLargePages
// is the size of the ring's opaque context area, in units of
// largePageSize.
func InitSize(descriptorsShift, payloadBufShift uint8, contextLargePages uint16) (Size, error) {
	if descriptorsShift < MinDescriptorsShift || descriptorsShift > MaxDescriptorsShift {
		return Size{}, newErr(ErrKindInvalidSize,
			fmt.Sprintf("descriptors_shift %d out of range [%d,%d]", descriptorsShift, MinDescriptorsShift, MaxDescriptorsShift),
			ErrInvalidSize)
	}
	if payloadBufShift < MinPayloadBufShift || payloadBufShift > MaxPayloadBufShift {
		return Size{}, newErr(ErrKindInvalidSize,
			fmt.Sprintf("payload_buf_shift %d out of range [%d,%d]", payloadBufShift, MinPayloadBufShift, MaxPayloadBufShift),
			ErrInvalidSize)
	}
	return Size{
		DescriptorCapacity: 1 << descriptorsShift,
		PayloadBufSize:     1 << payloadBufShift,
		ContextAreaSize:    uint64(contextLargePages) * largePageSize,
	}, nil
}

// layoutOffsets holds the byte offsets (relative to the ring's start
// offset within the file) of each ring section, computed from a Size.
type layoutOffsets struct {
	headerSize    uint64
	descStart     uint64
	descEnd       uint64
	payloadStart  uint64
	payloadEnd    uint64
	contextStart  uint64
	contextEnd    uint64
	total         uint64
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

func computeLayout(s Size) layoutOffsets {
	var l layoutOffsets
	l.headerSize = ringHeaderSize
	l.descStart = alignUp(l.headerSize, filePageSize)
	l.descEnd = l.descStart + s.DescriptorCapacity*descriptorSize
	l.payloadStart = alignUp(l.descEnd, filePageSize)
	l.payloadEnd = l.payloadStart + s.PayloadBufSize
	l.contextStart = alignUp(l.payloadEnd, largePageSize)
	l.contextEnd = l.contextStart + s.ContextAreaSize
	l.total = alignUp(l.contextEnd, filePageSize)
	return l
}

// CalcStorage returns the total number of bytes needed to store an
// event ring with this Size, including header, descriptor ring,
// payload buffer and context area, rounded for page/large-page
// alignment. Callers use this to size (e.g. ftruncate) the backing
// file before calling InitFile.
func (s Size) CalcStorage() uint64 {
	return computeLayout(s).total
}

// validate checks that a Size read back from a mapped header still
// describes a well-formed ring (powers of two within bounds). Used by
// Mmap to reject corrupt or foreign headers.
func (s Size) validate() error {
	if !isPowerOfTwo(s.DescriptorCapacity) {
		return newErr(ErrKindInvalidSize, "descriptor_capacity is not a power of two", ErrInvalidSize)
	}
	if !isPowerOfTwo(s.PayloadBufSize) {
		return newErr(ErrKindInvalidSize, "payload_buf_size is not a power of two", ErrInvalidSize)
	}
	shift := bitLen(s.DescriptorCapacity) - 1
	if shift < int(MinDescriptorsShift) || shift > int(MaxDescriptorsShift) {
		return newErr(ErrKindInvalidSize, "descriptor_capacity shift out of range", ErrInvalidSize)
	}
	shift = bitLen(s.PayloadBufSize) - 1
	if shift < int(MinPayloadBufShift) || shift > int(MaxPayloadBufShift) {
		return newErr(ErrKindInvalidSize, "payload_buf_size shift out of range", ErrInvalidSize)
	}
	return nil
}

func isPowerOfTwo(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}

func bitLen(n uint64) int {
	bits := 0
	for n > 0 {
		bits++
		n >>= 1
	}
	return bits
}
