// Package disk implements the on-disk page storage that the buffer pool
// manager treats as an external collaborator: a single page file addressed
// by page_id, plus a free list of deallocated page ids persisted in the
// file's header page.
package disk

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// PageSize is the fixed width, in bytes, of every page slot in the file.
const PageSize = 4096

// headerPageID is reserved for the free-list header and is never handed out
// by AllocatePage.
const headerPageID = 0

// InvalidPageID is the sentinel denoting "no page". It must never be used
// as a key by the buffer pool's page table or replacer.
const InvalidPageID = -1

// Manager is the external collaborator the buffer pool manager drives all
// reads and writes through (spec §6.1). It is assumed infallible by the
// callers in this module only insofar as they do not retry locally; I/O
// failures are surfaced as ordinary Go errors.
type Manager interface {
	// ReadPage fills out with PageSize bytes read from pageId's slot.
	ReadPage(pageId int, out []byte) error
	// WritePage persists PageSize bytes of data to pageId's slot.
	WritePage(pageId int, data []byte) error
	// AllocatePage returns a page id that is not currently allocated. Ids
	// released by DeallocatePage may be returned again.
	AllocatePage() (int, error)
	// DeallocatePage releases pageId for potential reuse by a later
	// AllocatePage call.
	DeallocatePage(pageId int) error
	// Close releases the underlying file handle.
	Close() error
}

var _ Manager = &FileManager{}

// FileManager is a Manager backed by a single OS file. Page id N occupies
// byte range [N*PageSize, (N+1)*PageSize). Page 0 is reserved for the free
// list header and is never returned by AllocatePage.
type FileManager struct {
	file       *os.File
	mu         sync.Mutex
	lastPageId int
	header     *header
}

type header struct {
	freeListHead int
	freeListTail int
}

// NewFileManager opens (creating if absent) the page file at path.
func NewFileManager(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	d := &FileManager{file: f}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	if stat.Size() == 0 {
		log.Printf("disk: initializing new page file %s", path)
		d.lastPageId = headerPageID
		if err := d.setHeader(header{}); err != nil {
			return nil, err
		}
		return d, nil
	}

	d.lastPageId = int(stat.Size()/PageSize) - 1
	return d, nil
}

func (d *FileManager) ReadPage(pageId int, out []byte) error {
	if pageId == InvalidPageID {
		return fmt.Errorf("disk: ReadPage called with invalid page id")
	}
	if len(out) != PageSize {
		return fmt.Errorf("disk: ReadPage destination must be %d bytes, got %d", PageSize, len(out))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.readAt(pageId, out)
}

func (d *FileManager) WritePage(pageId int, data []byte) error {
	if pageId == InvalidPageID {
		return fmt.Errorf("disk: WritePage called with invalid page id")
	}
	if len(data) != PageSize {
		return fmt.Errorf("disk: WritePage payload must be %d bytes, got %d", PageSize, len(data))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.writeAt(pageId, data)
}

// AllocatePage pops from the on-disk free list if it is non-empty, else
// grows the file by one page.
func (d *FileManager) AllocatePage() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, err := d.getHeader()
	if err != nil {
		return 0, err
	}

	if h.freeListHead != 0 {
		return d.popFreeList(h)
	}

	d.lastPageId++
	return d.lastPageId, nil
}

// DeallocatePage appends pageId to the tail of the on-disk free list.
func (d *FileManager) DeallocatePage(pageId int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, err := d.getHeader()
	if err != nil {
		return err
	}

	if h.freeListHead == 0 {
		h.freeListHead = pageId
		h.freeListTail = pageId
		return d.setHeader(h)
	}

	var next [PageSize]byte
	if err := d.readAt(h.freeListTail, next[:]); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(next[:8], uint64(pageId))
	if err := d.writeAt(h.freeListTail, next[:]); err != nil {
		return err
	}

	h.freeListTail = pageId
	return d.setHeader(h)
}

func (d *FileManager) Close() error {
	return d.file.Close()
}

func (d *FileManager) popFreeList(h header) (int, error) {
	pageId := h.freeListHead

	if h.freeListHead == h.freeListTail {
		h.freeListHead, h.freeListTail = 0, 0
		return pageId, d.setHeader(h)
	}

	var next [PageSize]byte
	if err := d.readAt(pageId, next[:]); err != nil {
		return 0, err
	}
	h.freeListHead = int(binary.BigEndian.Uint64(next[:8]))
	return pageId, d.setHeader(h)
}

func (d *FileManager) getHeader() (header, error) {
	if d.header != nil {
		return *d.header, nil
	}

	var data [PageSize]byte
	if err := d.readAt(headerPageID, data[:]); err != nil {
		return header{}, err
	}

	h := header{
		freeListHead: int(binary.BigEndian.Uint64(data[:8])),
		freeListTail: int(binary.BigEndian.Uint64(data[8:16])),
	}
	d.header = &h
	return h, nil
}

func (d *FileManager) setHeader(h header) error {
	d.header = &h

	var data [PageSize]byte
	binary.BigEndian.PutUint64(data[:8], uint64(h.freeListHead))
	binary.BigEndian.PutUint64(data[8:16], uint64(h.freeListTail))
	return d.writeAt(headerPageID, data[:])
}

// readAt reads pageId's slot into dst, zero-filling any portion of the slot
// that lies past the current end of file (a page that was allocated but
// never written back reads as zeros).
func (d *FileManager) readAt(pageId int, dst []byte) error {
	n, err := d.file.ReadAt(dst, int64(pageId)*int64(PageSize))
	if err != nil && err != io.EOF {
		return fmt.Errorf("disk: read %d: %w", pageId, err)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func (d *FileManager) writeAt(pageId int, data []byte) error {
	n, err := d.file.WriteAt(data, int64(pageId)*int64(PageSize))
	if err != nil {
		return fmt.Errorf("disk: write %d: %w", pageId, err)
	}
	if n != len(data) {
		return fmt.Errorf("disk: write %d: short write, wrote %d of %d bytes", pageId, n, len(data))
	}
	return nil
}
