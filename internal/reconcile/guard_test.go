package reconcile

import (
	"fmt"
	"sync"
	"testing"
)

func TestSeenGuardMarkAndSeen(t *testing.T) {
	g := newSeenGuard(10)

	if g.Seen("TXN1") {
		t.Fatal("unmarked reference reported as seen")
	}

	g.Mark("TXN1")
	if !g.Seen("TXN1") {
		t.Fatal("marked reference not reported as seen")
	}

	g.Mark("TXN1")
	if !g.Seen("TXN1") {
		t.Fatal("re-marking removed the reference")
	}
}

func TestSeenGuardEvictsOldest(t *testing.T) {
	g := newSeenGuard(3)

	g.Mark("TXN1")
	g.Mark("TXN2")
	g.Mark("TXN3")
	g.Mark("TXN4")

	if g.Seen("TXN1") {
		t.Fatal("oldest reference should have been evicted")
	}
	for _, ref := range []string{"TXN2", "TXN3", "TXN4"} {
		if !g.Seen(ref) {
			t.Fatalf("reference %s should still be cached", ref)
		}
	}
}

func TestSeenGuardDefaultSize(t *testing.T) {
	g := newSeenGuard(0)
	if g.maxSize != 4096 {
		t.Fatalf("expected default size 4096, got %d", g.maxSize)
	}
}

func TestSeenGuardConcurrentAccess(t *testing.T) {
	g := newSeenGuard(128)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ref := fmt.Sprintf("TXN%d-%d", n, j)
				g.Mark(ref)
				g.Seen(ref)
			}
		}(i)
	}
	wg.Wait()

	if len(g.refs) > 128 {
		t.Fatalf("cache exceeded its bound: %d entries", len(g.refs))
	}
}
