// Package buffer implements the buffer pool manager: a fixed-size
// in-memory cache of fixed-size disk pages mediating every read and write
// between upper layers and the disk.Manager. See DESIGN.md and
// SPEC_FULL.md for the full contract.
package buffer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"bufpool/disk"
)

// ErrInvalidPageID is returned whenever an operation is asked to act on
// disk.InvalidPageID.
var ErrInvalidPageID = errors.New("buffer: invalid page id")

// ErrPoolExhausted is returned by FetchPage and NewPage when every frame is
// pinned and no victim can be found.
var ErrPoolExhausted = errors.New("buffer: no free frame or victim available, all frames pinned")

// Config configures a Manager. Mirrors spec §6.2's construction contract:
// { pool_size: positive int, db_file: path }.
type Config struct {
	PoolSize int
	DBFile   string
}

// Manager is the buffer pool manager's public contract (spec §4.3). Every
// method acquires the BPM latch end to end, including any disk I/O it
// performs (spec §5): there is no finer-grained locking to fall back on,
// by design — see DESIGN.md's note on common.KeyMutex.
type Manager struct {
	mu       sync.Mutex
	frames   []*frame
	table    *pageTable
	replacer Replacer
	disk     disk.Manager
	freeList []int // indexes into frames, FIFO
}

// NewManager constructs a buffer pool manager of cfg.PoolSize frames backed
// by the page file at cfg.DBFile. All frames start in the free list (spec
// §3, Lifecycle).
func NewManager(cfg Config) (*Manager, error) {
	if cfg.PoolSize <= 0 {
		return nil, fmt.Errorf("buffer: pool size must be positive, got %d", cfg.PoolSize)
	}

	d, err := disk.NewFileManager(cfg.DBFile)
	if err != nil {
		return nil, fmt.Errorf("buffer: cannot open page file: %w", err)
	}

	return newManagerWithDisk(cfg.PoolSize, d), nil
}

// newManagerWithDisk is split out so tests can inject a fake disk.Manager.
func newManagerWithDisk(poolSize int, d disk.Manager) *Manager {
	frames := make([]*frame, poolSize)
	freeList := make([]int, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = newFrame(i)
		freeList[i] = i
	}

	return &Manager{
		frames:   frames,
		table:    newPageTable(),
		replacer: NewLRUReplacer(),
		disk:     d,
		freeList: freeList,
	}
}

// Close flushes all dirty pages then releases the underlying page file.
func (m *Manager) Close() error {
	if err := m.FlushAllPages(); err != nil {
		return err
	}
	return m.disk.Close()
}

// FetchPage returns a handle to the frame holding pageId, pinning it. On a
// page-table hit the pin count is incremented; on a miss a victim frame is
// drawn from the free list first, and only from the replacer if the free
// list is empty, then the page is read from disk into it. Returns
// ErrInvalidPageID for disk.InvalidPageID and ErrPoolExhausted when every
// frame is pinned.
func (m *Manager) FetchPage(pageId int) (*PageHandle, error) {
	if pageId == disk.InvalidPageID {
		return nil, ErrInvalidPageID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.table.find(pageId); ok {
		m.pin(f)
		return m.handle(f), nil
	}

	frameIdx, err := m.acquireFrame()
	if err != nil {
		return nil, err
	}

	f := m.frames[frameIdx]
	f.reset()
	f.pageId = pageId
	f.pinCount = 1
	m.table.insert(pageId, f)

	if err := m.disk.ReadPage(pageId, f.data); err != nil {
		m.table.remove(pageId)
		f.reset()
		m.freeList = append(m.freeList, frameIdx)
		return nil, fmt.Errorf("buffer: FetchPage %d: %w", pageId, err)
	}

	return m.handle(f), nil
}

// pin transitions a frame from the replacer into the pinned state,
// incrementing its pin count. Must be called with mu held. Any 0->1
// pin-count transition erases the frame from the replacer, preserving
// invariant I4 even on a page-table hit (spec §9, resolving the source's
// missed erase-on-hit).
func (m *Manager) pin(f *frame) {
	if f.pinCount == 0 {
		m.replacer.Erase(f.idx)
	}
	f.pinCount++
}

// UnpinPage decrements pageId's pin count. If isDirty, the dirty bit is set
// (a sticky OR: a later clean unpin never clears it). When the pin count
// reaches zero the frame becomes eligible for eviction. Returns false if
// pageId is not resident or was already unpinned (pin count was already 0).
func (m *Manager) UnpinPage(pageId int, isDirty bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.table.find(pageId)
	if !ok {
		return false
	}

	if f.pinCount <= 0 {
		return false
	}

	f.pinCount--
	if isDirty {
		f.dirty = true
	}
	if f.pinCount == 0 {
		m.replacer.Insert(f.idx)
	}
	return true
}

// FlushPage writes pageId's data to disk if it is resident and dirty,
// clearing its dirty bit. Returns false for disk.InvalidPageID, a
// non-resident page (checked before any frame access, per spec §9's fix
// for the source's use-after-miss dereference), or a resident-but-clean
// page.
func (m *Manager) FlushPage(pageId int) (bool, error) {
	if pageId == disk.InvalidPageID {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.table.find(pageId)
	if !ok {
		return false, nil
	}
	if !f.dirty {
		return false, nil
	}

	if err := m.disk.WritePage(pageId, f.data); err != nil {
		return false, fmt.Errorf("buffer: FlushPage %d: %w", pageId, err)
	}
	f.dirty = false
	return true, nil
}

// FlushAllPages writes every dirty resident page to disk and clears its
// dirty bit, skipping clean or non-resident frames. Per spec §9, this scans
// frames directly instead of consulting a side dirty-page map — the
// per-frame dirty bit is the only authoritative source.
func (m *Manager) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var flushErr error
	m.table.forEach(func(pageId int, f *frame) bool {
		if !f.dirty {
			return true
		}
		if err := m.disk.WritePage(pageId, f.data); err != nil {
			flushErr = fmt.Errorf("buffer: FlushAllPages: page %d: %w", pageId, err)
			return false
		}
		f.dirty = false
		return true
	})
	return flushErr
}

// DeletePage removes pageId from the buffer pool and returns its frame to
// the free list, after asking the disk manager to deallocate it. Returns
// false if pageId is not resident or is still pinned; in the latter case
// state is left unchanged. Per spec §9, this returns true on success,
// fixing the original source's unconditional false.
func (m *Manager) DeletePage(pageId int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.table.find(pageId)
	if !ok {
		return false, nil
	}
	if f.pinCount != 0 {
		return false, nil
	}

	m.table.remove(pageId)
	m.replacer.Erase(f.idx)

	if err := m.disk.DeallocatePage(pageId); err != nil {
		return false, fmt.Errorf("buffer: DeletePage %d: %w", pageId, err)
	}

	f.reset()
	m.freeList = append(m.freeList, f.idx)
	return true, nil
}

// NewPage allocates a fresh page id via the disk manager, draws a victim
// frame exactly as FetchPage's miss path does, and returns it pinned. The
// page's content is zeroed rather than read from disk, since it was just
// allocated.
func (m *Manager) NewPage() (*PageHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameIdx, err := m.acquireFrame()
	if err != nil {
		return nil, err
	}

	pageId, err := m.disk.AllocatePage()
	if err != nil {
		m.frames[frameIdx].reset()
		m.freeList = append(m.freeList, frameIdx)
		return nil, fmt.Errorf("buffer: NewPage: %w", err)
	}

	f := m.frames[frameIdx]
	f.reset()
	f.pageId = pageId
	f.pinCount = 1
	m.table.insert(pageId, f)

	return m.handle(f), nil
}

// acquireFrame draws a victim frame from the free list first and, only if
// it is empty, evicts one via the replacer, writing its contents back to
// disk first if dirty (spec §4.3, steps shared by FetchPage and NewPage;
// grounded on the original source's shared allocatePage helper). Must be
// called with mu held.
func (m *Manager) acquireFrame() (int, error) {
	if n := len(m.freeList); n > 0 {
		idx := m.freeList[0]
		m.freeList = m.freeList[1:]
		return idx, nil
	}

	victimIdx, ok := m.replacer.Victim()
	if !ok {
		return 0, ErrPoolExhausted
	}

	victim := m.frames[victimIdx]
	if victim.dirty {
		if err := m.disk.WritePage(victim.pageId, victim.data); err != nil {
			// roll the frame back into the replacer so the caller's
			// accounting is unaffected by the failed writeback.
			m.replacer.Insert(victimIdx)
			return 0, fmt.Errorf("buffer: writeback of victim page %d: %w", victim.pageId, err)
		}
		victim.dirty = false
		log.Printf("buffer: evicted dirty page %d from frame %d", victim.pageId, victimIdx)
	}

	m.table.remove(victim.pageId)
	return victimIdx, nil
}

func (m *Manager) handle(f *frame) *PageHandle {
	return &PageHandle{pageId: f.pageId, data: f.data}
}
