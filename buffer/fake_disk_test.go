package buffer

import (
	"errors"
	"sync"

	"bufpool/disk"
)

// fakeDisk is an in-memory disk.Manager used to test buffer pool behavior
// that is awkward to provoke against a real file (e.g. a write failure
// during eviction), and to assert exactly what was written back without
// round-tripping through the filesystem.
type fakeDisk struct {
	mu        sync.Mutex
	pages     map[int][]byte
	nextId    int
	failWrite map[int]bool
	reads     []int
	writes    []int
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{
		pages:     make(map[int][]byte),
		failWrite: make(map[int]bool),
	}
}

func (d *fakeDisk) ReadPage(pageId int, out []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reads = append(d.reads, pageId)
	data, ok := d.pages[pageId]
	if !ok {
		for i := range out {
			out[i] = 0
		}
		return nil
	}
	copy(out, data)
	return nil
}

func (d *fakeDisk) WritePage(pageId int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes = append(d.writes, pageId)
	if d.failWrite[pageId] {
		return errors.New("fakeDisk: simulated write failure")
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	d.pages[pageId] = stored
	return nil
}

func (d *fakeDisk) AllocatePage() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextId
	d.nextId++
	return id, nil
}

func (d *fakeDisk) DeallocatePage(pageId int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.pages, pageId)
	return nil
}

func (d *fakeDisk) Close() error { return nil }

var _ disk.Manager = &fakeDisk{}
