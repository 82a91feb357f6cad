package reuse

import "github.com/IvanBrykalov/reusedist/internal/ranktree"

// keyIndex maps a key to the tree node holding its latest access.
// Only the Engine mutates it, always together with the tree.
type keyIndex struct {
	m map[Key]ranktree.Handle
}

func newKeyIndex(hint int) keyIndex {
	return keyIndex{m: make(map[Key]ranktree.Handle, min(hint, 1<<16))}
}

func (ix *keyIndex) get(k Key) (ranktree.Handle, bool) {
	h, ok := ix.m[k]
	return h, ok
}

func (ix *keyIndex) set(k Key, h ranktree.Handle) { ix.m[k] = h }

// remove deletes k and reports whether it was present.
func (ix *keyIndex) remove(k Key) bool {
	if _, ok := ix.m[k]; !ok {
		return false
	}
	delete(ix.m, k)
	return true
}

func (ix *keyIndex) len() int { return len(ix.m) }

func (ix *keyIndex) reset() { clear(ix.m) }
