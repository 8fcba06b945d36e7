package cache

import "testing"

func TestLRU_EvictsLeastRecent(t *testing.T) {
	var evicted []string
	c := New[string, int](2)
	c.OnEvict = func(k string, _ int) { evicted = append(evicted, k) }

	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // b is now LRU
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v", evicted)
	}
}

func TestLRU_RemoveSkipsHook(t *testing.T) {
	called := false
	c := New[string, int](1)
	c.OnEvict = func(string, int) { called = true }
	c.Add("a", 1)

	if v, ok := c.Remove("a"); !ok || v != 1 {
		t.Fatalf("Remove = %v, %v", v, ok)
	}
	if _, ok := c.Remove("a"); ok {
		t.Fatal("second Remove reported present")
	}
	if called || c.Len() != 0 {
		t.Fatalf("called = %v, len = %d", called, c.Len())
	}
}

func TestNew_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New[string, int](0)
}
