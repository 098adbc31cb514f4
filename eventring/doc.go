// Package eventring implements a shared-memory event ring: a
// fixed-capacity, single-writer/many-reader, lock-free broadcast
// buffer that lives in a file-backed shared memory region and can be
// mapped concurrently by multiple processes.
//
// A producer records variable-sized events into the ring; any number
// of consumers, in any process that has the ring mapped, observe
// those events with zero-copy payload access and an explicit,
// race-free protocol for detecting when a payload has been
// overwritten by ring wrap-around.
//
// There is exactly one producer per ring. Readers never mutate the
// ring and may come and go freely; a slow reader simply loses events
// rather than blocking the writer. Resizing, persistence across
// process exit, and in-band flow control are explicitly out of scope.
package eventring
