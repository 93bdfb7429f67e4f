package catalog

import (
	"fmt"
	"testing"

	"github.com/moviematch/matchroom/internal/model"
)

func TestBoundedCache_GetPut(t *testing.T) {
	c := NewBoundedCache(4)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache reported a hit")
	}

	page := []model.Title{{ID: 1}, {ID: 2}}
	c.Put("movie:1", page)
	got, ok := c.Get("movie:1")
	if !ok || len(got) != 2 || got[0].ID != 1 {
		t.Errorf("unexpected cached page: %v, %v", got, ok)
	}
}

func TestBoundedCache_EvictsOldestInserted(t *testing.T) {
	c := NewBoundedCache(3)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), []model.Title{{ID: int64(i)}})
	}

	// Reading k0 must not protect it; eviction follows insertion order.
	c.Get("k0")
	c.Put("k3", []model.Title{{ID: 3}})

	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry survived eviction")
	}
	for _, key := range []string{"k1", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %s evicted out of order", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestBoundedCache_ReplaceKeepsAge(t *testing.T) {
	c := NewBoundedCache(2)
	c.Put("a", []model.Title{{ID: 1}})
	c.Put("b", []model.Title{{ID: 2}})

	// Re-putting "a" replaces its value but it stays the oldest entry.
	c.Put("a", []model.Title{{ID: 10}})
	c.Put("c", []model.Title{{ID: 3}})

	if _, ok := c.Get("a"); ok {
		t.Error("replaced entry should still evict first")
	}
	if got, ok := c.Get("b"); !ok || got[0].ID != 2 {
		t.Error("entry b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("entry c should be present")
	}
}

func TestBoundedCache_MinimumCapacity(t *testing.T) {
	c := NewBoundedCache(0)
	c.Put("a", nil)
	c.Put("b", nil)
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("latest entry missing from capacity-1 cache")
	}
}
