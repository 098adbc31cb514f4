package eventring

import "unsafe"

// Iterator is a reader's cursor into an event ring. Any number of
// Iterators, in any process with the ring mapped, may exist
// concurrently; they never mutate the ring (spec.md §4.5, §5).
type Iterator struct {
	ring   *Ring
	cursor uint64
}

// NewIterator returns an Iterator over r with its cursor at zero. Call
// Init to position it at the most recently produced event, or set a
// starting point explicitly with SeekBehind.
func (r *Ring) NewIterator() *Iterator {
	return &Iterator{ring: r}
}

// Init positions the cursor at the most recently produced event
// (spec.md §4.5, init_iterator).
func (it *Iterator) Init() {
	it.cursor = it.ring.header.loadLastSeqno()
}

// SeekBehind positions the cursor k events behind the most recently
// produced one. If k reaches back to or past the first event, the
// cursor is set to 0, so the next Next call polls seqno 1. Slots older than the ring's current
// contents may return stale or already-lapped data; spec.md §4.5
// notes this is the caller's tradeoff to make.
func (it *Iterator) SeekBehind(k uint64) {
	last := it.ring.header.loadLastSeqno()
	if last > k {
		it.cursor = last - k
	} else {
		it.cursor = 0 // so the next Next() call polls seqno 1
	}
}

// Cursor returns the iterator's current position.
func (it *Iterator) Cursor() uint64 { return it.cursor }

// TryCopy attempts to copy the descriptor for seqno s. It returns
// false if s is zero, if the slot hasn't been published yet (loaded
// seqno < s), or if the slot has already been overwritten by a later
// event (loaded seqno > s) — spec.md §4.5.
func (it *Iterator) TryCopy(s uint64) (Descriptor, bool) {
	if s == 0 {
		return Descriptor{}, false
	}
	raw := it.ring.descriptorSlot(s)
	var local descriptorOnDisk
	local = *raw // plain copy: may race with a concurrent writer: intentional, see below
	if raw.loadSeqno() != s {
		return Descriptor{}, false
	}
	var out Descriptor
	out.fromOnDisk(&local)
	return out, true
}

// PeekSlotSeqno returns the seqno currently stored in the slot that
// would hold event s, without regard to whether it equals s. Readers
// use this to measure how far the writer has lapped them when
// detecting gaps (spec.md §4.5, "Gap detection").
func (it *Iterator) PeekSlotSeqno(s uint64) uint64 {
	if s == 0 {
		return 0
	}
	return it.ring.descriptorSlot(s).loadSeqno()
}

// PayloadPeek returns a zero-copy pointer to desc's payload in shared
// memory. The returned pointer may alias live writer memory and its
// contents are only meaningful between a PayloadCheck call that
// returned true and the next write that could overwrite it; callers
// that want a safe, race-free copy should use PayloadMemcpy instead.
// Like the original monad_event_ring_payload_peek, this does not
// special-case a payload that wraps past the end of the buffer — a
// caller than cannot tolerate that must use PayloadMemcpy, which does.
func (it *Iterator) PayloadPeek(desc *Descriptor) unsafe.Pointer {
	return it.ring.payloadAt(desc.PayloadBufOffset)
}

// PayloadCheck reports whether desc's payload has not yet been
// overwritten by ring wraparound: the expiration test from spec.md
// §4.5.
func (it *Iterator) PayloadCheck(desc *Descriptor) bool {
	return desc.PayloadBufOffset >= it.ring.header.loadBufferWindowStart()
}

// PayloadMemcpy is the correct way to consume a payload: it checks
// the window before and after copying up to len(dst) bytes (clamped
// to desc.PayloadSize), handling wraparound, and returns false if the
// payload expired either before or during the copy. The double check
// is required because a writer may wrap and overwrite the payload
// while the copy is in progress (spec.md §4.5, §8 "Double-check
// soundness").
func (it *Iterator) PayloadMemcpy(desc *Descriptor, dst []byte) ([]byte, bool) {
	if !it.PayloadCheck(desc) {
		return nil, false
	}
	n := uint64(len(dst))
	if n > uint64(desc.PayloadSize) {
		n = uint64(desc.PayloadSize)
	}
	ring := it.ring
	bufSize := ring.size.PayloadBufSize
	pos := desc.PayloadBufOffset & ring.payloadBufMask
	if pos+n <= bufSize {
		src := unsafe.Slice((*byte)(ring.payloadAt(desc.PayloadBufOffset)), n)
		copy(dst[:n], src)
	} else {
		first := bufSize - pos
		src1 := unsafe.Slice((*byte)(ring.payloadAt(desc.PayloadBufOffset)), first)
		copy(dst[:first], src1)
		src2 := unsafe.Slice((*byte)(ring.payloadBuf), n-first)
		copy(dst[first:n], src2)
	}
	if !it.PayloadCheck(desc) {
		return nil, false // payload expired mid-copy; the bytes we just copied are tainted
	}
	return dst[:n], true
}

// Next advances the cursor by one event and returns it. If the writer
// has lapped the reader since the last call (the slot the cursor
// would have read now holds a much later sequence number), Next jumps
// the cursor forward to that event and reports how many events were
// skipped. If the next event hasn't been produced yet, Next returns
// ok == false without advancing the cursor; the caller should back
// off and poll again.
func (it *Iterator) Next() (desc Descriptor, skipped uint64, ok bool) {
	want := it.cursor + 1
	observed := it.PeekSlotSeqno(want)
	switch {
	case observed < want:
		return Descriptor{}, 0, false
	case observed == want:
		d, got := it.TryCopy(want)
		if !got {
			// The writer reused this slot again between our peek and
			// our copy; treat it the same as not-yet-available this
			// round rather than risk returning a torn descriptor.
			return Descriptor{}, 0, false
		}
		it.cursor = want
		return d, 0, true
	default: // observed > want: the writer lapped us
		d, got := it.TryCopy(observed)
		if !got {
			return Descriptor{}, 0, false
		}
		skipped = observed - want
		it.cursor = observed
		return d, skipped, true
	}
}
