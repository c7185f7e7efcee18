package buffer

import "bufpool/disk"

// frame is the in-memory home of at most one resident page (spec §3). Frames
// are allocated once, for the process lifetime, by newManagerWithDisk and
// never reallocated; only their contents change as pages move through them.
type frame struct {
	idx      int // this frame's fixed index into Manager.frames, set once at construction
	pageId   int
	data     []byte
	pinCount int
	dirty    bool
}

func newFrame(idx int) *frame {
	return &frame{
		idx:    idx,
		pageId: disk.InvalidPageID,
		data:   make([]byte, disk.PageSize),
	}
}

// reset clears a frame back to its just-freed shape, ready to take on a new
// page id. Callers are responsible for setting pageId and pinCount
// afterwards.
func (f *frame) reset() {
	f.pageId = disk.InvalidPageID
	f.dirty = false
	f.pinCount = 0
	for i := range f.data {
		f.data[i] = 0
	}
}
