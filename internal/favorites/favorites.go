// Package favorites tracks the listings a visitor has marked during a session.
package favorites

import (
	"sort"
	"sync"
)

// Tracker is a set of listing identifiers. It does not check that an id
// exists in the catalog and keeps ids of listings that were later deleted.
type Tracker struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// Toggle removes id when present, otherwise adds it. It returns the new
// membership.
func (t *Tracker) Toggle(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ids == nil {
		t.ids = make(map[string]struct{})
	}
	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

// IsFavorite reports membership.
func (t *Tracker) IsFavorite(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ids[id]
	return ok
}

// IDs returns the members in sorted order.
func (t *Tracker) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of members.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}
