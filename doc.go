// Package harrismap implements a lock-free concurrent hash map over a
// fixed array of Harris/Michael ordered singly-linked lists, one per
// bucket. Every mutator and reader makes lock-free progress: a mark bit
// stolen from the low bit of each node's next pointer marks a node
// logically deleted before it is physically unlinked, so no operation
// ever blocks another.
//
// Memory reclamation, backoff under CAS contention, and key hashing are
// all pluggable — see the reclaim subpackage, WithBackoff, and
// WithHasher — the same way the algorithm's C++ ancestor takes them as
// compile-time template parameters. The bucket count is fixed for a
// Map's lifetime; there is no resizing.
//
// The iterator returned by Begin is weakly consistent: it visits every
// key continuously present from before Begin to past the iterator's own
// discard, never skips a key that was never deleted, and may or may not
// observe keys inserted during the walk.
package harrismap
