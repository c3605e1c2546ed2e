package geocode

import (
	"strconv"
	"testing"
)

func TestQueryCacheEvictsOldestFirst(t *testing.T) {
	cache := newQueryCache(2)
	cache.put("a", []AddressSuggestion{{PrimaryLine: "A"}})
	cache.put("b", []AddressSuggestion{{PrimaryLine: "B"}})
	cache.put("c", []AddressSuggestion{{PrimaryLine: "C"}})

	if _, ok := cache.get("a"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if _, ok := cache.get("b"); !ok {
		t.Fatal("entry b evicted too early")
	}
	if got, ok := cache.get("c"); !ok || got[0].PrimaryLine != "C" {
		t.Fatalf("entry c missing or wrong: %+v", got)
	}
}

func TestQueryCacheUpdateDoesNotEvict(t *testing.T) {
	cache := newQueryCache(2)
	cache.put("a", []AddressSuggestion{{PrimaryLine: "A"}})
	cache.put("b", []AddressSuggestion{{PrimaryLine: "B"}})
	cache.put("a", []AddressSuggestion{{PrimaryLine: "A2"}})

	if got, ok := cache.get("a"); !ok || got[0].PrimaryLine != "A2" {
		t.Fatalf("updated entry = %+v, want replacement", got)
	}
	if _, ok := cache.get("b"); !ok {
		t.Fatal("update of existing key evicted another entry")
	}
}

func TestQueryCacheGetReturnsIndependentCopy(t *testing.T) {
	cache := newQueryCache(2)
	cache.put("a", []AddressSuggestion{{PrimaryLine: "A"}, {PrimaryLine: "B"}})

	first, ok := cache.get("a")
	if !ok {
		t.Fatal("entry missing")
	}
	first[0].PrimaryLine = "mutated"
	first[1] = AddressSuggestion{}

	second, ok := cache.get("a")
	if !ok {
		t.Fatal("entry missing on second read")
	}
	if second[0].PrimaryLine != "A" || second[1].PrimaryLine != "B" {
		t.Fatalf("cached entry changed by caller mutation: %+v", second)
	}
}

func TestQueryCacheHoldsUpToCapacity(t *testing.T) {
	cache := newQueryCache(50)
	for i := 0; i < 50; i++ {
		cache.put("q"+strconv.Itoa(i), nil)
	}
	for i := 0; i < 50; i++ {
		if _, ok := cache.get("q" + strconv.Itoa(i)); !ok {
			t.Fatalf("entry %d evicted below capacity", i)
		}
	}
}
