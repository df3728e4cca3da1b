package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memDoc struct {
	seq  uint64
	data Document
}

// Memory is a goroutine-safe in-memory Store. Query results follow insertion
// order.
type Memory struct {
	mu   sync.RWMutex
	seq  uint64
	cols map[string]map[string]*memDoc
}

func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]*memDoc)}
}

func (m *Memory) collection(name string) map[string]*memDoc {
	col, ok := m.cols[name]
	if !ok {
		col = make(map[string]*memDoc)
		m.cols[name] = col
	}
	return col
}

func copyDoc(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (m *Memory) Insert(_ context.Context, collection string, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.seq++
	m.collection(collection)[id] = &memDoc{seq: m.seq, data: copyDoc(doc)}
	return id, nil
}

func (m *Memory) GetByID(_ context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.cols[collection][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Data: copyDoc(d.data)}, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, patch Patch, mode WriteMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.collection(collection)
	set, cleared := patch.Split()

	d, ok := col[id]
	if !ok {
		m.seq++
		d = &memDoc{seq: m.seq, data: Document{}}
		col[id] = d
	}
	if mode == Replace {
		d.data = set
		return nil
	}
	for k, v := range set {
		d.data[k] = v
	}
	for _, k := range cleared {
		delete(d.data, k)
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cols[collection], id)
	return nil
}

func (m *Memory) Query(_ context.Context, collection string, filters ...Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		seq uint64
		rec Record
	}
	var hits []hit
	for id, d := range m.cols[collection] {
		if matchesAll(d.data, filters) {
			hits = append(hits, hit{seq: d.seq, rec: Record{ID: id, Data: copyDoc(d.data)}})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	out := make([]Record, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(doc) {
			return false
		}
	}
	return true
}

var (
	_ Store  = (*Memory)(nil)
	_ Pinger = (*Memory)(nil)
)
