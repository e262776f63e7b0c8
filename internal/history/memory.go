package history

import (
	"sort"
	"sync"
)

// MemoryRepository keeps entries in memory. It stands in when the database
// cannot be opened.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []*Entry
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.SessionID == e.SessionID {
			return &DuplicateSessionError{SessionID: e.SessionID.String()}
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MemoryRepository) ListRecent(limit int) ([]*Entry, error) {
	if limit < 1 {
		return nil, &InvalidLimitError{Limit: limit}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) TotalsByScene() ([]SceneTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byScene := map[string]*SceneTotal{}
	var order []string
	for _, e := range m.entries {
		key := string(e.SceneID)
		t, ok := byScene[key]
		if !ok {
			t = &SceneTotal{SceneID: e.SceneID}
			byScene[key] = t
			order = append(order, key)
		}
		t.Sessions++
		t.Elapsed += e.Elapsed
		if e.StartedAt.After(t.LastPlay) {
			t.LastPlay = e.StartedAt
		}
	}
	out := make([]SceneTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *byScene[k])
	}
	SortTotals(out)
	return out, nil
}

func (m *MemoryRepository) Clear() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

// SortTotals orders totals by elapsed time, then session count, then scene id.
func SortTotals(totals []SceneTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if a.Elapsed != b.Elapsed {
			return a.Elapsed > b.Elapsed
		}
		if a.Sessions != b.Sessions {
			return a.Sessions > b.Sessions
		}
		return a.SceneID < b.SceneID
	})
}
