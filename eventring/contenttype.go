package eventring

// ContentType identifies the event-type namespace a ring's events are
// drawn from. Each content type owns an independent uint16 namespace
// for event_type, in which 0 is invalid and 1 is always
// EventTypeRecordError.
type ContentType uint16

const (
	// ContentTypeNone is an invalid content type; never used by a
	// real ring.
	ContentTypeNone ContentType = iota
	// ContentTypeTest is used by simple automated tests.
	ContentTypeTest
	// ContentTypeExec carries execution events, mirroring the
	// original Monad event ring's primary content domain.
	ContentTypeExec

	contentTypeCount
)

var contentTypeNames = [contentTypeCount]string{
	ContentTypeNone: "NONE",
	ContentTypeTest: "TEST",
	ContentTypeExec: "EXEC",
}

// ContentTypeName returns the human-readable name for a content type,
// or "UNKNOWN" if ct is outside the registered range. Ring-specific
// content types declared by a hosting binary above contentTypeCount
// are expected to be named by that binary's own registry; this
// function only knows the built-in ones.
func ContentTypeName(ct ContentType) string {
	if int(ct) < len(contentTypeNames) {
		return contentTypeNames[ct]
	}
	return "UNKNOWN"
}

// EventTypeRecordError is the event_type value reserved, in every
// content namespace, for the in-band RECORD_ERROR event described by
// RecordErrorPayload.
const EventTypeRecordError uint16 = 1

// RecordErrorKind enumerates the reasons the recorder synthesizes a
// RECORD_ERROR event in place of the event the caller asked it to
// record.
type RecordErrorKind uint16

const (
	RecordErrorNone RecordErrorKind = iota
	// RecordErrorOverflow4GB: the requested payload size exceeds
	// math.MaxUint32.
	RecordErrorOverflow4GB
	// RecordErrorOverflowExpire: the payload is large enough that it
	// would be overwritten before it could ever be read, i.e.
	// P >= payloadBufSize - WindowIncr.
	RecordErrorOverflowExpire
	// RecordErrorMissingEvent: a higher layer expected a peer event
	// that never arrived. The ring core never emits this itself; it
	// exists so callers have a standard way to report the condition
	// in-band.
	RecordErrorMissingEvent
)

// RecordErrorPayload is the fixed payload of a RECORD_ERROR event
// (event_type == EventTypeRecordError), 16 bytes on the wire.
type RecordErrorPayload struct {
	ErrorType            RecordErrorKind
	DroppedEventType     uint16
	TruncatedPayloadSize uint32
	RequestedPayloadSize uint64
}

// recordErrorPayloadSize is the fixed wire size of RecordErrorPayload.
const recordErrorPayloadSize = 16

func encodeRecordErrorPayload(p RecordErrorPayload) [recordErrorPayloadSize]byte {
	var b [recordErrorPayloadSize]byte
	putUint16(b[0:2], uint16(p.ErrorType))
	putUint16(b[2:4], p.DroppedEventType)
	putUint32(b[4:8], p.TruncatedPayloadSize)
	putUint64(b[8:16], p.RequestedPayloadSize)
	return b
}

func decodeRecordErrorPayload(b []byte) RecordErrorPayload {
	return RecordErrorPayload{
		ErrorType:            RecordErrorKind(getUint16(b[0:2])),
		DroppedEventType:     getUint16(b[2:4]),
		TruncatedPayloadSize: getUint32(b[4:8]),
		RequestedPayloadSize: getUint64(b[8:16]),
	}
}

// DecodeRecordErrorPayload decodes a 16-byte RECORD_ERROR payload read
// back from the ring (e.g. via Iterator.PayloadMemcpy). b must be at
// least recordErrorPayloadSize bytes long.
func DecodeRecordErrorPayload(b []byte) RecordErrorPayload {
	return decodeRecordErrorPayload(b)
}

// String names a RecordErrorKind for logging and metrics labels.
func (k RecordErrorKind) String() string {
	switch k {
	case RecordErrorOverflow4GB:
		return "overflow_4gb"
	case RecordErrorOverflowExpire:
		return "overflow_expire"
	case RecordErrorMissingEvent:
		return "missing_event"
	default:
		return "none"
	}
}
