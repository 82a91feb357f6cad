// Package ranktree implements the recency order used by the reuse distance
// engine: a size-augmented splay tree whose nodes live in a slice arena and
// are addressed by Handle.
//
// Nodes are ordered by logical access time. The rightmost node is the most
// recent one, so the number of nodes in the right subtree of a node splayed
// to the root is exactly its LRU stack distance.
//
// A Tree is not safe for concurrent use.
package ranktree

import (
	"fmt"
	"iter"
	"math"

	"github.com/IvanBrykalov/reusedist/internal/errs"
)

// Handle addresses a node in the arena. The zero Handle is Nil.
type Handle uint32

// Nil is the handle of the sentinel slot; it never refers to a live node.
const Nil Handle = 0

// MaxLen is the largest number of live nodes a Tree can address.
const MaxLen = math.MaxInt32 - 1

// preallocLimit caps the arena capacity reserved up front from a size hint.
const preallocLimit = 1 << 16

type node struct {
	key    uint64
	time   uint64
	left   Handle
	right  Handle
	parent Handle
	// size is the subtree node count; 0 marks a free (or sentinel) slot.
	size uint32
}

// Tree is an order-statistics splay tree keyed by access time.
type Tree struct {
	nodes []node // nodes[0] is the Nil sentinel and stays zeroed
	free  []Handle
	root  Handle
	clock uint64
}

// New returns an empty tree. hint is the expected number of live nodes;
// only part of it is reserved eagerly.
func New(hint int) *Tree {
	if hint < 0 {
		hint = 0
	}
	return &Tree{nodes: make([]node, 1, min(hint, preallocLimit)+1)}
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return int(t.nodes[t.root].size) }

// Now returns the logical time that the next insert or move will receive.
func (t *Tree) Now() uint64 { return t.clock }

// Key returns the key stored at h.
func (t *Tree) Key(h Handle) uint64 {
	t.mustLive(h, "Key")
	return t.nodes[h].key
}

// Time returns the logical time of h's most recent access.
func (t *Tree) Time(h Handle) uint64 {
	t.mustLive(h, "Time")
	return t.nodes[h].time
}

// PushFront inserts key as the most recent node and returns its handle.
func (t *Tree) PushFront(key uint64) Handle {
	h := t.alloc(key)
	t.nodes[h].time = t.tick()
	t.attachNewest(h)
	return h
}

// Rank returns how many nodes are strictly more recent than h.
func (t *Tree) Rank(h Handle) int {
	t.mustLive(h, "Rank")
	t.splay(h)
	return int(t.nodes[t.nodes[h].right].size)
}

// MoveToFront returns the rank of h before the move and then makes h the
// most recent node. The handle stays valid.
func (t *Tree) MoveToFront(h Handle) int {
	t.mustLive(h, "MoveToFront")
	t.splay(h)
	d := int(t.nodes[t.nodes[h].right].size)
	if d == 0 {
		// already the newest; only its timestamp advances
		t.nodes[h].time = t.tick()
		return 0
	}
	t.detachRoot(h)
	t.nodes[h].time = t.tick()
	t.attachNewest(h)
	return d
}

// EvictOldest removes the least recent node and returns its key.
// ok is false when the tree is empty.
func (t *Tree) EvictOldest() (key uint64, ok bool) {
	if t.root == Nil {
		return 0, false
	}
	m := t.leftmost(t.root)
	t.splay(m)
	t.detachRoot(m)
	key = t.nodes[m].key
	t.release(m)
	return key, true
}

// Oldest returns the key of the least recent node.
func (t *Tree) Oldest() (uint64, bool) {
	if t.root == Nil {
		return 0, false
	}
	m := t.leftmost(t.root)
	t.splay(m)
	return t.nodes[m].key, true
}

// Newest returns the key of the most recent node.
func (t *Tree) Newest() (uint64, bool) {
	if t.root == Nil {
		return 0, false
	}
	m := t.rightmost(t.root)
	t.splay(m)
	return t.nodes[m].key, true
}

// NewestFirst iterates keys from the most to the least recent.
// The tree must not be modified during iteration.
func (t *Tree) NewestFirst() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		var stack []Handle
		cur := t.root
		for cur != Nil || len(stack) > 0 {
			for cur != Nil {
				stack = append(stack, cur)
				cur = t.nodes[cur].right
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(t.nodes[cur].key) {
				return
			}
			cur = t.nodes[cur].left
		}
	}
}

// Reset drops every node and rewinds the logical clock to zero.
// Arena capacity is retained.
func (t *Tree) Reset() {
	clear(t.nodes)
	t.nodes = t.nodes[:1]
	t.free = t.free[:0]
	t.root = Nil
	t.clock = 0
}

// Verify walks the whole tree and checks links, subtree sizes, time order
// and arena accounting. It is O(n) and meant for tests and debugging.
func (t *Tree) Verify() error {
	if t.nodes[0] != (node{}) {
		return t.corrupt("sentinel slot modified")
	}
	freeSet := make(map[Handle]struct{}, len(t.free))
	for _, h := range t.free {
		if h == Nil || int(h) >= len(t.nodes) {
			return t.corrupt(fmt.Sprintf("free list holds out-of-range handle %d", h))
		}
		if _, dup := freeSet[h]; dup {
			return t.corrupt(fmt.Sprintf("handle %d freed twice", h))
		}
		if t.nodes[h].size != 0 {
			return t.corrupt(fmt.Sprintf("free handle %d has size %d", h, t.nodes[h].size))
		}
		freeSet[h] = struct{}{}
	}
	live := len(t.nodes) - 1 - len(t.free)
	if t.root != Nil && t.nodes[t.root].parent != Nil {
		return t.corrupt("root has a parent")
	}

	var (
		stack   []Handle
		visited int
		prev    uint64
		cur     = t.root
	)
	for cur != Nil || len(stack) > 0 {
		for cur != Nil {
			stack = append(stack, cur)
			cur = t.nodes[cur].left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[cur]
		if n.size == 0 {
			return t.corrupt(fmt.Sprintf("reachable handle %d is free", cur))
		}
		if n.left != Nil && t.nodes[n.left].parent != cur {
			return t.corrupt(fmt.Sprintf("left child of %d has wrong parent", cur))
		}
		if n.right != Nil && t.nodes[n.right].parent != cur {
			return t.corrupt(fmt.Sprintf("right child of %d has wrong parent", cur))
		}
		if want := 1 + t.nodes[n.left].size + t.nodes[n.right].size; n.size != want {
			return t.corrupt(fmt.Sprintf("handle %d size %d, want %d", cur, n.size, want))
		}
		if visited > 0 && n.time <= prev {
			return t.corrupt(fmt.Sprintf("time order broken at handle %d (%d after %d)", cur, n.time, prev))
		}
		if n.time >= t.clock {
			return t.corrupt(fmt.Sprintf("handle %d time %d not below clock %d", cur, n.time, t.clock))
		}
		prev = n.time
		visited++
		cur = n.right
	}
	if visited != live {
		return t.corrupt(fmt.Sprintf("reached %d nodes, arena holds %d live", visited, live))
	}
	if visited != t.Len() {
		return t.corrupt(fmt.Sprintf("reached %d nodes, root size %d", visited, t.Len()))
	}
	return nil
}

// ---- internals ----

func (t *Tree) tick() uint64 {
	now := t.clock
	t.clock++
	return now
}

func (t *Tree) alloc(key uint64) Handle {
	var h Handle
	if n := len(t.free); n > 0 {
		h = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.nodes) > MaxLen {
			panic(errs.InternalInvariant("ranktree", "arena exhausted"))
		}
		t.nodes = append(t.nodes, node{})
		h = Handle(len(t.nodes) - 1)
	}
	t.nodes[h] = node{key: key, size: 1}
	return h
}

func (t *Tree) release(h Handle) {
	t.nodes[h] = node{}
	t.free = append(t.free, h)
}

func (t *Tree) mustLive(h Handle, op string) {
	if h == Nil || int(h) >= len(t.nodes) || t.nodes[h].size == 0 {
		panic(errs.InternalInvariant("ranktree", fmt.Sprintf("%s: handle %d is not live", op, h)))
	}
}

func (t *Tree) corrupt(detail string) error {
	return errs.InternalInvariant("ranktree", detail)
}

func (t *Tree) update(h Handle) {
	n := &t.nodes[h]
	n.size = 1 + t.nodes[n.left].size + t.nodes[n.right].size
}

func (t *Tree) leftmost(h Handle) Handle {
	for t.nodes[h].left != Nil {
		h = t.nodes[h].left
	}
	return h
}

func (t *Tree) rightmost(h Handle) Handle {
	for t.nodes[h].right != Nil {
		h = t.nodes[h].right
	}
	return h
}

// rotate lifts x above its parent, keeping in-order position and sizes.
func (t *Tree) rotate(x Handle) {
	n := t.nodes
	p := n[x].parent
	g := n[p].parent
	if n[p].left == x {
		b := n[x].right
		n[p].left = b
		if b != Nil {
			n[b].parent = p
		}
		n[x].right = p
	} else {
		b := n[x].left
		n[p].right = b
		if b != Nil {
			n[b].parent = p
		}
		n[x].left = p
	}
	n[p].parent = x
	n[x].parent = g
	switch {
	case g == Nil:
		t.root = x
	case n[g].left == p:
		n[g].left = x
	default:
		n[g].right = x
	}
	t.update(p)
	t.update(x)
}

// splay moves x to the root with zig, zig-zig and zig-zag steps.
// Sizes on the access path are recomputed bottom-up by the rotations.
func (t *Tree) splay(x Handle) {
	n := t.nodes
	for n[x].parent != Nil {
		p := n[x].parent
		if g := n[p].parent; g != Nil {
			if (n[g].left == p) == (n[p].left == x) {
				t.rotate(p)
			} else {
				t.rotate(x)
			}
		}
		t.rotate(x)
	}
}

// attachNewest links a detached node as the rightmost one and splays it.
func (t *Tree) attachNewest(h Handle) {
	n := t.nodes
	n[h].left, n[h].right, n[h].parent = Nil, Nil, Nil
	n[h].size = 1
	if t.root == Nil {
		t.root = h
		return
	}
	m := t.rightmost(t.root)
	n[m].right = h
	n[h].parent = m
	t.splay(h)
}

// detachRoot unlinks the root x and joins its subtrees.
func (t *Tree) detachRoot(x Handle) {
	n := t.nodes
	l, r := n[x].left, n[x].right
	if l == Nil {
		t.root = r
		if r != Nil {
			n[r].parent = Nil
		}
	} else {
		n[l].parent = Nil
		t.root = l
		m := t.rightmost(l)
		t.splay(m)
		n[m].right = r
		if r != Nil {
			n[r].parent = m
		}
		t.update(m)
	}
	n[x].left, n[x].right, n[x].parent = Nil, Nil, Nil
}
