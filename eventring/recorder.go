package eventring

import (
	"math"
	"time"
	"unsafe"
)

// Recorder is the single-producer side of an event ring. There must
// be exactly one Recorder actively writing to a given Ring at a time;
// multi-producer rings are an explicit non-goal (spec.md §1, §4.4,
// §9).
type Recorder struct {
	ring *Ring
}

// NewRecorder returns a Recorder bound to r. The caller is responsible
// for ensuring no other goroutine or process records into r
// concurrently.
func (r *Ring) NewRecorder() *Recorder {
	return &Recorder{ring: r}
}

// Record reserves a descriptor slot and payload space, writes
// payload, and publishes the event. It returns the published
// sequence number.
//
// If payload is larger than the ring can ever hold safely, the event
// is dropped and a RECORD_ERROR event is recorded in its place; the
// returned seqno is always valid and always refers to something that
// was actually published (spec.md §4.4, §7 — recording errors are
// never surfaced synchronously, they are folded into the stream).
func (rec *Recorder) Record(eventType uint16, payload []byte, contentExt [4]uint64) uint64 {
	return rec.record(eventType, uint64(len(payload)), payload, contentExt)
}

// RecordSize is Record's lower-level counterpart: it lets a caller
// (typically a test) exercise the oversize/overflow-expire paths
// without allocating requestedSize bytes. payload need only be as
// long as requestedSize when the event is not going to be dropped;
// when requestedSize is large enough to trigger RecordErrorOverflow4GB
// or RecordErrorOverflowExpire, payload is never read.
func (rec *Recorder) RecordSize(eventType uint16, requestedSize uint64, payload []byte, contentExt [4]uint64) uint64 {
	return rec.record(eventType, requestedSize, payload, contentExt)
}

func (rec *Recorder) record(eventType uint16, requestedSize uint64, payload []byte, contentExt [4]uint64) uint64 {
	ring := rec.ring
	h := ring.header

	// Step 1: reserve a descriptor slot.
	s := h.loadLastSeqno() + 1
	h.storeLastSeqno(s)
	slot := ring.descriptorSlot(s)

	// Step 2: reserve payload bytes (unwrapped, aligned).
	base := h.loadNextPayloadByte()
	off := alignUp(base, PayloadAlign)
	h.storeNextPayloadByte(off + requestedSize)

	// Step 3: 4GiB overflow check.
	if requestedSize > math.MaxUint32 {
		rec.emitRecordError(slot, s, RecordErrorOverflow4GB, eventType, requestedSize, contentExt)
		return s
	}

	// Step 4: window advancement.
	rec.advanceWindow(off, requestedSize)

	// Step 5: immediate-expiry check.
	bufSize := ring.size.PayloadBufSize
	if requestedSize >= bufSize-WindowIncr {
		rec.emitRecordError(slot, s, RecordErrorOverflowExpire, eventType, requestedSize, contentExt)
		return s
	}

	// Step 6: write the payload, handling wraparound.
	rec.writePayload(off, payload[:requestedSize])

	// Steps 7-8: fill the descriptor body and publish.
	rec.publish(slot, s, eventType, uint32(requestedSize), off, contentExt)
	return s
}

// advanceWindow implements spec.md §4.4 step 4: once the write
// pointer crosses a WindowIncr boundary, publish a new
// buffer_window_start floor below which payload must be treated as
// expired. buffer_window_start never decreases.
func (rec *Recorder) advanceWindow(off, size uint64) {
	h := rec.ring.header
	end := off + size
	windowStart := h.loadBufferWindowStart()
	if (end >> 24) <= (windowStart >> 24) {
		return
	}
	bufSize := rec.ring.size.PayloadBufSize
	// end - bufSize + WindowIncr can be negative early in a ring's
	// life (end hasn't wrapped the buffer yet); clamp at zero rather
	// than let it underflow as an unsigned value.
	signed := int64(end) - int64(bufSize) + int64(WindowIncr)
	if signed < 0 {
		signed = 0
	}
	newWindow := uint64(signed)
	if newWindow > windowStart {
		h.storeBufferWindowStart(newWindow)
	}
}

// writePayload copies data to payloadBuf+off, splitting the copy in
// two when it wraps past the end of the buffer.
func (rec *Recorder) writePayload(off uint64, data []byte) {
	ring := rec.ring
	n := uint64(len(data))
	if n == 0 {
		return
	}
	bufSize := ring.size.PayloadBufSize
	pos := off & ring.payloadBufMask
	if pos+n <= bufSize {
		dst := unsafe.Slice((*byte)(ring.payloadAt(off)), n)
		copy(dst, data)
		return
	}
	first := bufSize - pos
	dst1 := unsafe.Slice((*byte)(ring.payloadAt(off)), first)
	copy(dst1, data[:first])
	dst2 := unsafe.Slice((*byte)(ring.payloadBuf), n-first)
	copy(dst2, data[first:])
}

func (rec *Recorder) publish(slot *descriptorOnDisk, seqno uint64, eventType uint16, payloadSize uint32, off uint64, contentExt [4]uint64) {
	slot.eventType = eventType
	slot.payloadSize = payloadSize
	slot.recordEpochNanos = uint64(time.Now().UnixNano())
	slot.payloadBufOffset = off
	slot.contentExt = contentExt
	slot.storeSeqnoRelease(seqno)
}

// emitRecordError writes a RecordErrorPayload and publishes it in
// place of the event the caller asked for (spec.md §4.4 steps 3, 5;
// §7). It takes its own small, fresh payload reservation rather than
// reusing the dropped event's (off, requestedSize): in the
// OverflowExpire case that reservation is exactly what just pushed
// buffer_window_start past itself, so writing there would publish an
// error record that is already expired. The dropped reservation is
// left untouched; next_payload_byte already accounts for it.
func (rec *Recorder) emitRecordError(slot *descriptorOnDisk, seqno uint64, kind RecordErrorKind, droppedEventType uint16, requestedSize uint64, contentExt [4]uint64) {
	h := rec.ring.header
	base := h.loadNextPayloadByte()
	off := alignUp(base, PayloadAlign)
	h.storeNextPayloadByte(off + recordErrorPayloadSize)

	payload := encodeRecordErrorPayload(RecordErrorPayload{
		ErrorType:            kind,
		DroppedEventType:     droppedEventType,
		TruncatedPayloadSize: 0,
		RequestedPayloadSize: requestedSize,
	})
	rec.writePayload(off, payload[:])
	rec.publish(slot, seqno, EventTypeRecordError, recordErrorPayloadSize, off, contentExt)
}
