package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUReplacer_VictimOnEmpty_ReturnsNotOk(t *testing.T) {
	r := NewLRUReplacer()
	_, ok := r.Victim()
	assert.False(t, ok)
}

func TestLRUReplacer_Victim_ReturnsInsertionOrder(t *testing.T) {
	r := NewLRUReplacer()
	r.Insert(5)
	r.Insert(3)
	r.Insert(7)
	r.Insert(3) // re-insert moves 3 to MRU

	v, ok := r.Victim()
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = r.Victim()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = r.Victim()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = r.Victim()
	assert.False(t, ok)
}

func TestLRUReplacer_Erase_RemovesAndReportsPresence(t *testing.T) {
	r := NewLRUReplacer()
	r.Insert(1)
	r.Insert(2)

	assert.True(t, r.Erase(1))
	assert.False(t, r.Erase(1))
	assert.Equal(t, 1, r.Size())

	v, ok := r.Victim()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUReplacer_ReInsertExistingKey_DoesNotDuplicate(t *testing.T) {
	r := NewLRUReplacer()
	r.Insert(1)
	r.Insert(2)
	r.Insert(1)

	assert.Equal(t, 2, r.Size())

	v, _ := r.Victim()
	assert.Equal(t, 2, v)
	v, _ = r.Victim()
	assert.Equal(t, 1, v)
}

func TestLRUReplacer_Size_TracksInsertAndRemoval(t *testing.T) {
	r := NewLRUReplacer()
	assert.Equal(t, 0, r.Size())

	r.Insert(1)
	r.Insert(2)
	assert.Equal(t, 2, r.Size())

	r.Victim()
	assert.Equal(t, 1, r.Size())
}
