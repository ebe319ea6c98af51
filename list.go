package harrismap

import "github.com/tessercore/harrismap/reclaim"

// findInfo is the traversal state spec §4.3 calls FindInfo: the position
// one bucket-list walk has reached, positioned so that an insert or erase
// can act on it without re-walking from the head.
type findInfo[K Key, V any] struct {
	// prev is the address of the atomic field that reaches cur: either a
	// bucket head or some node's next field.
	prev *reclaim.Pointer[Node[K, V]]

	// save pins the node owning prev, so that node cannot be reclaimed
	// while prev's address is still in use. save is nil iff prev is a
	// bucket head.
	save reclaim.Guard[Node[K, V]]

	// cur pins the node currently under inspection; nil once the walk has
	// run past every live key in the bucket.
	cur     reclaim.Guard[Node[K, V]]
	curNode *Node[K, V]

	// next is the most recent unprotected marked load of cur's next
	// field, carried between find's internal steps.
	next     *Node[K, V]
	nextMark bool
}

// releaseGuards resets whatever save/cur pins info currently holds,
// without touching its positional fields. Spec §9's "scoped acquisition"
// design note applied to every exit from a stale position, not just a
// scope-bound return.
func (info *findInfo[K, V]) releaseGuards() {
	if info.save != nil {
		info.save.Reset()
	}
	if info.cur != nil {
		info.cur.Reset()
	}
}

// reset repositions info at the bucket's head, releasing any pins it
// held. Used both to seed a fresh traversal and to restart one after a
// concurrent change invalidates the current position.
func (info *findInfo[K, V]) reset(head *reclaim.Pointer[Node[K, V]]) {
	info.releaseGuards()
	info.prev = head
	info.save = nil
	info.cur = nil
	info.curNode = nil
}

// find implements spec §4.3.1. It searches the given bucket for key,
// physically unlinking every logically-deleted node it passes over along
// the way. It returns true with info positioned on a live matching node,
// or false with info positioned on the first node with a strictly greater
// key (or past the last node), ready for insert to splice against without
// re-walking.
//
// The caller may pass info already positioned partway into the bucket
// (an iterator continuing its walk); find snapshots that position as its
// restart point rather than always restarting at the bucket head, exactly
// as xenium's find does with the caller-supplied (prev, save).
func (m *Map[K, V]) find(key K, bucket int, info *findInfo[K, V], backoff Backoff) bool {
	head := &m.buckets[bucket].head
	startPrev := info.prev
	startSave := info.save
	if startPrev == nil {
		startPrev = head
	}
	// advanced is true once info.save holds a pin this call took itself;
	// startSave is never Reset on advance, since a retry reuses it.
	advanced := false

retry:
	info.prev = startPrev
	info.save = startSave
	advanced = false

	next, nextMark := info.prev.Load()
	if nextMark {
		// The starting predecessor is itself mid-unlink; there is no safe
		// way to continue from it, so fall back to the bucket head.
		if startSave != nil {
			startSave.Reset()
		}
		startPrev = head
		startSave = nil
		goto retry
	}
	info.next, info.nextMark = next, nextMark

	for {
		info.cur = m.scheme.NewGuard()
		cur, ok := info.cur.AcquireIfEqual(info.prev, info.next, info.nextMark)
		if !ok {
			goto retry
		}
		info.curNode = cur

		if info.curNode == nil {
			return false
		}

		succ, succMark := info.curNode.next.Load()
		if succMark {
			// cur is logically deleted: reload its successor (this second
			// load is the acquire re-read spec §9 requires, so the CAS
			// below publishes a successor whose own writes already
			// happened-before it) and splice cur out.
			succ, _ = info.curNode.next.Load()
			if !info.prev.CompareAndSwap(info.curNode, false, succ, false) {
				backoff.Backoff()
				info.cur.Reset()
				goto retry
			}
			info.cur.Reclaim()
			info.next, info.nextMark = succ, false
			continue
		}

		// Re-verify prev still reaches cur before trusting cur's key: a
		// concurrent unlink could have retargeted prev between the load
		// above and here, which would let us skip a live key otherwise.
		if p, _ := info.prev.Load(); p != info.curNode {
			info.cur.Reset()
			goto retry
		}

		switch {
		case info.curNode.key == key:
			return true
		case info.curNode.key > key:
			return false
		default:
			if info.save != nil && advanced {
				info.save.Reset()
			}
			advanced = true
			info.save = info.cur
			info.prev = &info.curNode.next
			info.next, info.nextMark = succ, succMark
		}
	}
}

// firstLive positions info at the first live node reachable from
// info.prev (a bucket head, when called from Begin), physically unlinking
// any leading run of marked nodes exactly as find does. Unlike find it
// has no key to compare against: it stops at the first node that survives
// the mark check, whatever its key, so it can seed an iterator without a
// sentinel "smaller than every key" value.
func (m *Map[K, V]) firstLive(bucket int, info *findInfo[K, V], backoff Backoff) {
	head := &m.buckets[bucket].head
	startPrev := info.prev
	startSave := info.save
	if startPrev == nil {
		startPrev = head
	}

retry:
	info.prev = startPrev
	info.save = startSave

	next, nextMark := info.prev.Load()
	if nextMark {
		if startSave != nil {
			startSave.Reset()
		}
		startPrev = head
		startSave = nil
		goto retry
	}
	info.next, info.nextMark = next, nextMark

	for {
		info.cur = m.scheme.NewGuard()
		cur, ok := info.cur.AcquireIfEqual(info.prev, info.next, info.nextMark)
		if !ok {
			goto retry
		}
		info.curNode = cur

		if info.curNode == nil {
			return
		}

		succ, succMark := info.curNode.next.Load()
		if succMark {
			succ, _ = info.curNode.next.Load()
			if !info.prev.CompareAndSwap(info.curNode, false, succ, false) {
				backoff.Backoff()
				info.cur.Reset()
				goto retry
			}
			info.cur.Reclaim()
			info.next, info.nextMark = succ, false
			continue
		}

		if p, _ := info.prev.Load(); p != info.curNode {
			info.cur.Reset()
			goto retry
		}

		return
	}
}

// installIfAbsent runs the common insert loop from spec §4.3.2, shared by
// every insert variant. build constructs the node to splice in; it is
// invoked at most once, and only once find has confirmed no live node
// already holds key. If eager is non-nil it is used instead of calling
// build, matching the eager-allocation variants (Emplace/EmplaceOrGet)
// that must construct the node before the first find.
func (m *Map[K, V]) installIfAbsent(key K, eager *Node[K, V], build func() *Node[K, V]) (*findInfo[K, V], bool) {
	bucket := m.bucketFor(key)
	info := &findInfo[K, V]{prev: &m.buckets[bucket].head}
	backoff := m.newBackoff()
	n := eager

	for {
		if m.find(key, bucket, info, backoff) {
			return info, false
		}
		if n == nil {
			n = build()
		}
		n.next.Store(info.curNode, false)
		// Pin n before attempting to publish it, exactly as xenium
		// constructs info.cur = guard_ptr(n) before the compare_exchange
		// in get_or_emplace/emplace_or_get: a node must never be reachable
		// from the list for even an instant with no guard protecting it.
		guard := m.scheme.NewGuard()
		guard.Adopt(n)
		if info.prev.CompareAndSwap(info.curNode, false, n, false) {
			if info.cur != nil {
				info.cur.Reset()
			}
			info.cur = guard
			info.curNode = n
			return info, true
		}
		guard.Reset()
		if info.cur != nil {
			info.cur.Reset()
		}
		backoff.Backoff()
	}
}

// eraseAt implements spec §4.3.3's two-phase deletion once find has
// already positioned info on the live node to remove. It returns the
// pinned successor position so callers (Erase and the iterator's erase)
// can continue from the right place without re-walking, plus whether this
// call is the one that actually performed the logical deletion — a racing
// eraser may have already claimed this exact node, in which case the
// caller removed nothing and must report that honestly.
func (m *Map[K, V]) eraseAt(bucket int, key K, info *findInfo[K, V], backoff Backoff) (*findInfo[K, V], bool) {
	for {
		succ, succMark := info.curNode.next.Load()
		if succMark {
			// A racing eraser already marked this exact node before we
			// could; we did not remove it. Re-find, exactly as xenium's
			// erase does on a lost mark-CAS race, so info lands on a
			// consistent position and the caller reports false.
			info.reset(&m.buckets[bucket].head)
			m.find(key, bucket, info, backoff)
			return info, false
		}
		if info.curNode.next.CompareAndSwap(succ, false, succ, true) {
			break
		}
		backoff.Backoff()
	}

	succ, _ := info.curNode.next.Load()
	// Pin succ before attempting the splice, exactly as xenium's
	// erase(iterator) constructs guard_ptr(next.get()) before the
	// compare_exchange_weak and reuses that same guard unconditionally on
	// success. Re-verifying afterward (the way find's AcquireIfEqual does)
	// would be wrong here: a concurrent insert can retarget info.prev to a
	// brand new node between our splice succeeding and the re-check,
	// making the re-check fail even though succ is still live and was
	// never skipped — exactly the node the caller must continue from.
	next := m.scheme.NewGuard()
	next.Adopt(succ)
	if info.prev.CompareAndSwap(info.curNode, false, succ, false) {
		info.cur.Reclaim()
		info.cur = next
		info.curNode = succ
		return info, true
	}
	next.Reset()

	// Another thread's traversal beat us to the physical unlink, or spliced
	// something else in ahead of it. We still own the mark, so this call
	// erased key; re-find by key only to guarantee the mark is fully
	// spliced out before we return (spec's requirement that erase never
	// returns with latent garbage) and to reposition info per the
	// iterator's weak-consistency contract, per spec §9's second open
	// question.
	info.reset(&m.buckets[bucket].head)
	m.find(key, bucket, info, backoff)
	return info, true
}
