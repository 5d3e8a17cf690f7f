package favorites

import (
	"reflect"
	"sync"
	"testing"
)

func TestTracker_ToggleTwiceRestores(t *testing.T) {
	var tr Tracker
	tr.Toggle("keep")
	before := tr.IDs()

	if !tr.Toggle("p1") {
		t.Fatalf("first Toggle should add")
	}
	if !tr.IsFavorite("p1") {
		t.Fatalf("p1 should be a favorite")
	}
	if tr.Toggle("p1") {
		t.Fatalf("second Toggle should remove")
	}
	if got := tr.IDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("IDs = %v, want %v", got, before)
	}
}

func TestTracker_ZeroValue(t *testing.T) {
	var tr Tracker
	if tr.IsFavorite("x") || tr.Len() != 0 || len(tr.IDs()) != 0 {
		t.Fatalf("zero Tracker should be empty")
	}
}

func TestTracker_ConcurrentToggles(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Toggle("p1")
		}()
	}
	wg.Wait()
	if tr.IsFavorite("p1") {
		t.Fatalf("an even number of toggles should leave p1 unset")
	}
}
