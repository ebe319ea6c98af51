package harrismap

// Iterator is the weakly-consistent forward traversal spec §4.3.5
// describes: it visits every key continuously present from before Begin
// to past the iterator's own discard, except keys erased during
// iteration; keys inserted during iteration may or may not be visited.
//
// It is not multi-pass: because a delete-then-advance repositions via
// find (which may land on a different node than the original successor
// once several nodes have been removed), two iterators that currently
// compare equal need not still compare equal after both are advanced
// once. Callers should not rely on comparing snapshots of an Iterator.
type Iterator[K Key, V any] struct {
	m      *Map[K, V]
	bucket int
	info   *findInfo[K, V]
}

func (it *Iterator[K, V]) done() bool {
	return it.info == nil || it.info.curNode == nil
}

// Entry returns the key/value pair the iterator currently points to. Its
// result is undefined once the iterator is done — matching spec §7's
// blanket statement that dereferencing end() is undefined behavior, not
// defensively checked.
func (it *Iterator[K, V]) Entry() Entry[K, V] {
	return Entry[K, V]{n: it.info.curNode}
}

// enterBucket positions the iterator at the first live node of it.bucket,
// advancing across empty buckets as needed, until either a live node is
// found or every remaining bucket has been exhausted (it becomes done,
// matching End()).
func (it *Iterator[K, V]) enterBucket() {
	if it.info != nil {
		it.info.releaseGuards()
	}
	for it.bucket < len(it.m.buckets) {
		info := &findInfo[K, V]{prev: &it.m.buckets[it.bucket].head}
		backoff := it.m.newBackoff()
		it.m.firstLive(it.bucket, info, backoff)
		if info.curNode != nil {
			it.info = info
			return
		}
		it.bucket++
	}
	it.info = &findInfo[K, V]{}
}

// advanceBucket moves the iterator forward to the first live node of the
// next non-empty bucket, resetting save (a predecessor pin never carries
// across a bucket boundary).
func (it *Iterator[K, V]) advanceBucket() {
	it.bucket++
	it.enterBucket()
}

// Next advances the iterator by one position, per spec §4.3.5's `++`.
// It returns false once the iterator has run past the last element.
func (it *Iterator[K, V]) Next() bool {
	if it.done() {
		return false
	}
	backoff := it.m.newBackoff()
	cur := it.info.curNode

	next, mark := cur.next.Load()
	if !mark {
		g := it.m.scheme.NewGuard()
		pinned, ok := g.AcquireIfEqual(&cur.next, next, false)
		if ok {
			if it.info.save != nil {
				it.info.save.Reset()
			}
			it.info.save = it.info.cur
			it.info.prev = &cur.next
			it.info.cur = g
			it.info.curNode = pinned
			if it.info.curNode == nil {
				it.advanceBucket()
			}
			return !it.done()
		}
	}

	// cur was logically deleted, or the word changed underneath us;
	// reposition by re-finding cur's key from wherever info.prev/save
	// still points (the predecessor position that led into cur), which
	// lands on the first live node with key >= cur.key.
	it.m.find(cur.key, it.bucket, it.info, backoff)
	if it.info.curNode == nil {
		it.advanceBucket()
	}
	return !it.done()
}

// advancePastErase repositions the iterator after EraseIterator has
// removed its current element: eraseAt already leaves info.curNode at the
// pinned successor if the physical unlink it performed succeeded (or at
// wherever a fallback find landed); this only needs to cross a bucket
// boundary if that left the iterator empty-handed.
func (it *Iterator[K, V]) advancePastErase(backoff Backoff) {
	if it.info.curNode == nil {
		it.advanceBucket()
	}
}
