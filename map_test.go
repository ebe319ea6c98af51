package harrismap

import "testing"

func TestEmptyMap(t *testing.T) {
	m := New[int, int](4)
	if m.Contains(1) {
		t.Error("empty map should not contain anything")
	}
	if _, ok := m.Find(1); ok {
		t.Error("Find on empty map should return false")
	}
}

// TestBucketLayout follows spec §8's concrete end-to-end scenario:
// Buckets = 4, hash(k) = k.
func TestBucketLayout(t *testing.T) {
	m := New[int, int](4, WithHasher[int, int](func(k int) uint64 { return uint64(k) }))

	for _, k := range []int{1, 5, 9, 2, 6} {
		if !m.Emplace(k, k*10) {
			t.Fatalf("Emplace(%d) should succeed on a fresh map", k)
		}
	}

	assertOrder(t, m, 1, []int{1, 5, 9})
	assertOrder(t, m, 2, []int{2, 6})

	if !m.Contains(5) {
		t.Error("find(5) should be true")
	}
	if m.Contains(3) {
		t.Error("find(3) should be false")
	}
	if !m.Erase(5) {
		t.Error("erase(5) should succeed")
	}
	if m.Contains(5) {
		t.Error("find(5) should be false after erase")
	}
	if !m.Contains(9) {
		t.Error("find(9) should still be true")
	}
}

func assertOrder(t *testing.T, m *Map[int, int], bucket int, want []int) {
	t.Helper()
	n, _ := m.buckets[bucket].head.Load()
	var got []int
	for n != nil {
		if _, mark := n.next.Load(); !mark {
			got = append(got, n.key)
		}
		n, _ = n.next.Load()
	}
	if len(got) != len(want) {
		t.Fatalf("bucket %d: got %v, want %v", bucket, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: got %v, want %v", bucket, got, want)
		}
	}
}

func TestInsertFindOverwriteRefusal(t *testing.T) {
	m := New[string, int](8)

	if !m.Emplace("a", 1) {
		t.Fatal("first insert of a fresh key should succeed")
	}
	entry, ok := m.Find("a")
	if !ok || entry.Value() != 1 {
		t.Fatalf("Find(a) = (%v, %v), want (1, true)", entry.Value(), ok)
	}
	if m.Emplace("a", 2) {
		t.Fatal("re-inserting an existing key should return false")
	}
	entry, _ = m.Find("a")
	if entry.Value() != 1 {
		t.Fatalf("value should be unchanged by the refused insert, got %v", entry.Value())
	}
}

func TestEmplaceOrGet(t *testing.T) {
	m := New[string, int](8)

	entry, inserted := m.EmplaceOrGet("a", 1)
	if !inserted || entry.Value() != 1 {
		t.Fatalf("first EmplaceOrGet should insert, got (%v, %v)", entry.Value(), inserted)
	}
	entry, inserted = m.EmplaceOrGet("a", 2)
	if inserted || entry.Value() != 1 {
		t.Fatalf("duplicate EmplaceOrGet should return the existing entry, got (%v, %v)", entry.Value(), inserted)
	}
}

func TestGetOrEmplace(t *testing.T) {
	m := New[string, int](8)

	entry, inserted := m.GetOrEmplace("a", 1)
	if !inserted || entry.Value() != 1 {
		t.Fatalf("first GetOrEmplace should insert, got (%v, %v)", entry.Value(), inserted)
	}
	entry, inserted = m.GetOrEmplace("a", 2)
	if inserted || entry.Value() != 1 {
		t.Fatalf("duplicate GetOrEmplace should not overwrite, got (%v, %v)", entry.Value(), inserted)
	}
}

func TestGetOrEmplaceLazyBuildsOnce(t *testing.T) {
	m := New[string, int](8)
	calls := 0
	factory := func() int {
		calls++
		return 99
	}

	m.GetOrEmplaceLazy("a", factory)
	m.GetOrEmplaceLazy("a", factory)
	m.GetOrEmplaceLazy("a", factory)

	if calls != 1 {
		t.Fatalf("factory should run exactly once, ran %d times", calls)
	}
}

func TestEraseAbsentKeyIsNoop(t *testing.T) {
	m := New[int, int](4)
	if m.Erase(42) {
		t.Fatal("erase of an absent key should return false")
	}
}

func TestInsertEraseRoundTrip(t *testing.T) {
	m := New[int, int](4)
	m.Emplace(7, 700)
	if !m.Erase(7) {
		t.Fatal("erase of a present key should return true")
	}
	if m.Contains(7) {
		t.Fatal("key should be gone after erase")
	}
}

func TestSetValueMutatesInPlace(t *testing.T) {
	m := New[int, int](4)
	m.Emplace(1, 1)
	entry, _ := m.Find(1)
	entry.SetValue(2)
	entry, _ = m.Find(1)
	if entry.Value() != 2 {
		t.Fatalf("SetValue should be visible to a later Find, got %v", entry.Value())
	}
}

func TestNewPanicsOnNonPositiveBuckets(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New with 0 buckets should panic")
		}
	}()
	New[int, int](0)
}
