// Package history implements the bounded, templated, sequence-aware append
// log over the external record store.
//
// The store contract is a key-ordered list (push front, range, delete); all
// ordering beyond "most recently pushed is at index 0" is reconstructed here
// from record timestamps and batch sequence numbers. Base/persona records are
// never persisted: they are re-prepended on every read.
//
// A per-conversation-key mutex serializes mutating operations so a turn's
// multi-record batch and the rewrite operations (Remove/RemoveAll) cannot
// interleave under concurrent bursts. Ordering between two different messages
// handled concurrently remains unspecified.
package history
