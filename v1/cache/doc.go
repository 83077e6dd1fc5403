// Package cache provides an in-process key/value cache with two eviction
// disciplines. NewLRU bounds the number of entries and evicts the least
// recently used one when the bound is exceeded; NewTTL is unbounded. Both
// remove entries once their deadline passes.
//
// Deadlines are kept in a single min-heap served by one background goroutine
// per cache. Every insert stamps the entry with a fresh generation, and a
// firing only removes the key if the stored entry still carries the
// generation it was scheduled for, so refreshing a key never lets an older
// deadline remove the newer value.
//
// A single read/write mutex guards each cache. In the LRU variant Get
// promotes the entry and therefore takes the write lock; Peek is the
// non-promoting read.
package cache
