// Package memory provides in-memory implementations of storage ports,
// used by tests and the demo server.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/panelkit/flyout/ports"
)

// RecordStore implements ports.RecordStore in memory.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]map[string]any // "panel/id" → values
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]map[string]any)}
}

func recordKey(panel, id string) string {
	return panel + "/" + id
}

// Get retrieves a record's field values.
func (s *RecordStore) Get(ctx context.Context, panel, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.records[recordKey(panel, id)]
	if !ok {
		return nil, ports.ErrNotFound
	}

	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out, nil
}

// Save stores a record's sanitized field values.
func (s *RecordStore) Save(ctx context.Context, panel, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]any, len(data))
	for k, v := range data {
		values[k] = v
	}
	s.records[recordKey(panel, id)] = values
	return nil
}

// Delete removes a record.
func (s *RecordStore) Delete(ctx context.Context, panel, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(panel, id)
	if _, ok := s.records[key]; !ok {
		return ports.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// Directory implements ports.Directory over a fixed label table, keyed by
// kind/target.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]map[string]string // "kind/target" → id → label
}

// NewDirectory creates an empty in-memory directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]map[string]string)}
}

// Add records an entry under kind/target.
func (d *Directory) Add(kind, target, id, label string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := kind + "/" + target
	if d.entries[key] == nil {
		d.entries[key] = make(map[string]string)
	}
	d.entries[key][id] = label
}

// Search returns entries whose label contains the term, case-insensitive.
func (d *Directory) Search(ctx context.Context, kind, target, term string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string)
	needle := strings.ToLower(term)
	for id, label := range d.entries[kind+"/"+target] {
		if term == "" || strings.Contains(strings.ToLower(label), needle) {
			out[id] = label
		}
	}
	return out, nil
}

// Labels returns labels for the given ids; unknown ids are omitted.
func (d *Directory) Labels(ctx context.Context, kind, target string, ids []string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(ids))
	table := d.entries[kind+"/"+target]
	for _, id := range ids {
		if label, ok := table[id]; ok {
			out[id] = label
		}
	}
	return out, nil
}
