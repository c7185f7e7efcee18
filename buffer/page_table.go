package buffer

import "github.com/puzpuzpuz/xsync/v3"

// pageTable is the concurrent page_id -> frame mapping of spec §4.1. The
// buffer pool manager's latch already serializes every mutation end to end
// (spec §5), so xsync.MapOf's own striped locking is defensive layering
// only, in the same relationship the spec describes between the BPM latch
// and the replacer's internal lock (§4.2) — spec §4.1 calls out that "a
// library-provided concurrent map shrinks" the hand-rolled extendible hash
// the original C++ source builds from scratch.
type pageTable struct {
	m *xsync.MapOf[int, *frame]
}

func newPageTable() *pageTable {
	return &pageTable{m: xsync.NewMapOf[int, *frame]()}
}

// find returns the frame mapped to pageId, if any.
func (t *pageTable) find(pageId int) (*frame, bool) {
	return t.m.Load(pageId)
}

// insert establishes pageId's mapping. Overwriting an existing key is a
// caller bug; the buffer pool manager never does so.
func (t *pageTable) insert(pageId int, f *frame) {
	t.m.Store(pageId, f)
}

// remove deletes pageId's mapping, reporting whether it existed.
func (t *pageTable) remove(pageId int) bool {
	_, existed := t.m.LoadAndDelete(pageId)
	return existed
}

// forEach iterates every resident (page_id, frame) pair, stopping early if
// fn returns false. Iteration order is unspecified, matching the page
// table's no-ordering contract (spec §4.1).
func (t *pageTable) forEach(fn func(pageId int, f *frame) bool) {
	t.m.Range(fn)
}
