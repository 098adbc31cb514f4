package eventring

import "encoding/binary"

// All multi-byte integers in the ring's shared memory layout are
// little-endian; the ring is host-local and endian-portability is not
// a goal (spec.md §6). These small helpers keep the encode/decode
// call sites (the RECORD_ERROR payload codec in contenttype.go)
// consistent, centralizing wire encoding around
// encoding/binary.LittleEndian rather than scattering it.

func putUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

func getUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func getUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func getUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
