package speech

import (
	"sync"
	"testing"
)

// TestRefUpgrade verifies the handle upgrades while the owner holds
// the coordinator and reports gone after release.
func TestRefUpgrade(t *testing.T) {
	c := &Coordinator{}
	ref := NewRef(c)

	got, ok := ref.Get()
	if !ok || got != c {
		t.Fatalf("Get() = (%v, %v), want coordinator", got, ok)
	}

	ref.Release()

	if got, ok := ref.Get(); ok || got != nil {
		t.Errorf("Get() after Release = (%v, %v), want (nil, false)", got, ok)
	}
}

// TestRefConcurrentRelease verifies releasing while other goroutines
// upgrade never yields a torn read: every Get sees either the live
// coordinator or gone.
func TestRefConcurrentRelease(t *testing.T) {
	c := &Coordinator{}
	ref := NewRef(c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				got, ok := ref.Get()
				if ok && got == nil {
					t.Error("Get() = (nil, true)")
					return
				}
				if !ok && got != nil {
					t.Error("Get() = (non-nil, false)")
					return
				}
			}
		}()
	}
	ref.Release()
	wg.Wait()
}
