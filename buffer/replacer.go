package buffer

// Replacer is the ordered set of eviction candidates described in spec
// §4.2: unpinned frame indexes, evicted in least-recently-inserted order.
// Implementations must be safe for the internal locking they carry to be a
// defensive-layering concern only — the buffer pool manager's latch already
// serializes every call (spec §5).
type Replacer interface {
	// Insert marks frameId as eligible for eviction, placing it at the MRU
	// end. Inserting an already-present frameId moves it to MRU instead of
	// creating a duplicate entry.
	Insert(frameId int)

	// Victim removes and returns the LRU-end frame id. ok is false when the
	// replacer is empty.
	Victim() (frameId int, ok bool)

	// Erase removes frameId if present, reporting whether it was.
	Erase(frameId int) bool

	// Size returns the current number of eviction candidates.
	Size() int
}
