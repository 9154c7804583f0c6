package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It keeps insertion order per collection and can
// be told to fail specific operations, which is how tests simulate an unreachable
// backend.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[string]map[string]any
	order  map[string][]string
	errs   map[string]error
	denied map[string]bool
	calls  map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		data:   make(map[string]map[string]map[string]any),
		order:  make(map[string][]string),
		errs:   make(map[string]error),
		denied: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

// FailOn makes every call of op ("GetCollection", "AddDocument", ...) return err
// until cleared with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// Deny makes reads of collection fail with ErrPermissionDenied.
func (m *Memory) Deny(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[collection] = true
}

// Calls returns how many times op was invoked, failed calls included.
func (m *Memory) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

func (m *Memory) enter(op string) error {
	m.calls[op]++
	return m.errs[op]
}

func (m *Memory) GetCollection(_ context.Context, collection string, filters ...Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetCollection"); err != nil {
		return nil, err
	}
	if m.denied[collection] {
		return nil, ErrPermissionDenied
	}

	docs := make([]Document, 0, len(m.order[collection]))
	for _, id := range m.order[collection] {
		data := m.data[collection][id]
		if !Matches(data, filters) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: cloneMap(data)})
	}
	return docs, nil
}

func (m *Memory) GetDocument(_ context.Context, ref Ref) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetDocument"); err != nil {
		return Document{}, err
	}
	if m.denied[ref.Collection] {
		return Document{}, ErrPermissionDenied
	}

	data, ok := m.data[ref.Collection][ref.ID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: ref.ID, Data: cloneMap(data)}, nil
}

func (m *Memory) SetDocument(_ context.Context, ref Ref, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SetDocument"); err != nil {
		return err
	}
	m.put(ref, data)
	return nil
}

func (m *Memory) AddDocument(_ context.Context, collection string, data map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AddDocument"); err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.put(Ref{Collection: collection, ID: id}, data)
	return id, nil
}

func (m *Memory) UpdateDocument(_ context.Context, ref Ref, partial map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateDocument"); err != nil {
		return err
	}
	existing, ok := m.data[ref.Collection][ref.ID]
	if !ok {
		return ErrNotFound
	}
	for k, v := range cloneMap(partial) {
		existing[k] = v
	}
	return nil
}

func (m *Memory) DeleteDocument(_ context.Context, ref Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteDocument"); err != nil {
		return err
	}
	if _, ok := m.data[ref.Collection][ref.ID]; !ok {
		return nil
	}
	delete(m.data[ref.Collection], ref.ID)
	ids := m.order[ref.Collection]
	for i, id := range ids {
		if id == ref.ID {
			m.order[ref.Collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) BatchWrite(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("BatchWrite"); err != nil {
		return err
	}
	for _, w := range writes {
		m.put(w.Ref, w.Data)
	}
	return nil
}

// Collections lists collection names in sorted order.
func (m *Memory) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name, docs := range m.data {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m *Memory) put(ref Ref, data map[string]any) {
	coll, ok := m.data[ref.Collection]
	if !ok {
		coll = make(map[string]map[string]any)
		m.data[ref.Collection] = coll
	}
	if _, exists := coll[ref.ID]; !exists {
		m.order[ref.Collection] = append(m.order[ref.Collection], ref.ID)
	}
	coll[ref.ID] = cloneMap(data)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneMap(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	default:
		return v
	}
}
