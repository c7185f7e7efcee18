package buffer

import (
	"container/list"
	"sync"
)

var _ Replacer = &LRUReplacer{}

// LRUReplacer is a doubly linked list of frame ids plus a map from frame id
// to list node, giving O(1) Insert, Victim and Erase as spec §4.2 requires.
// It is the idiomatic Go shape of the original C++ source's
// std::list<T> + std::unordered_map<T, iterator> (original_source's
// lru_replacer.cpp), also independently reached for by several pack
// examples (Adarsh-Kmt-DragonDB, darleet-GraphDB) via container/list.
type LRUReplacer struct {
	mu    sync.Mutex
	order *list.List // front = MRU, back = LRU
	nodes map[int]*list.Element
}

// NewLRUReplacer constructs an empty replacer.
func NewLRUReplacer() *LRUReplacer {
	return &LRUReplacer{
		order: list.New(),
		nodes: make(map[int]*list.Element),
	}
}

func (r *LRUReplacer) Insert(frameId int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.nodes[frameId]; ok {
		r.order.MoveToFront(elem)
		return
	}

	r.nodes[frameId] = r.order.PushFront(frameId)
}

func (r *LRUReplacer) Victim() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem := r.order.Back()
	if elem == nil {
		return 0, false
	}

	frameId := elem.Value.(int)
	r.order.Remove(elem)
	delete(r.nodes, frameId)
	return frameId, true
}

func (r *LRUReplacer) Erase(frameId int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.nodes[frameId]
	if !ok {
		return false
	}

	r.order.Remove(elem)
	delete(r.nodes, frameId)
	return true
}

func (r *LRUReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.nodes)
}
