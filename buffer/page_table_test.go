package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTable_FindInsertRemove(t *testing.T) {
	pt := newPageTable()

	_, ok := pt.find(1)
	assert.False(t, ok)

	f := newFrame(0)
	pt.insert(1, f)

	got, ok := pt.find(1)
	assert.True(t, ok)
	assert.Same(t, f, got)

	assert.True(t, pt.remove(1))
	assert.False(t, pt.remove(1))

	_, ok = pt.find(1)
	assert.False(t, ok)
}

func TestPageTable_ForEach_VisitsAllEntries(t *testing.T) {
	pt := newPageTable()
	pt.insert(1, newFrame(0))
	pt.insert(2, newFrame(1))
	pt.insert(3, newFrame(2))

	seen := map[int]bool{}
	pt.forEach(func(pageId int, f *frame) bool {
		seen[pageId] = true
		return true
	})

	assert.Len(t, seen, 3)
	assert.True(t, seen[1])
	assert.True(t, seen[2])
	assert.True(t, seen[3])
}

func TestPageTable_ForEach_StopsOnFalse(t *testing.T) {
	pt := newPageTable()
	pt.insert(1, newFrame(0))
	pt.insert(2, newFrame(1))
	pt.insert(3, newFrame(2))

	visited := 0
	pt.forEach(func(pageId int, f *frame) bool {
		visited++
		return false
	})

	assert.Equal(t, 1, visited)
}
