package pvm

import "slices"

// MetaValue is one historical value of a data node property.
// Gen is the engine generation at which the value was recorded.
type MetaValue struct {
	Value string `json:"val" yaml:"val"`
	Gen   int64  `json:"gen" yaml:"gen"`
}

// MetaStore is the mutable property history of a data node.
// Values for a key are kept in recording order; the last one is current.
type MetaStore struct {
	entries map[string][]MetaValue
}

// NewMetaStore creates a store holding the given current values at generation 0.
func NewMetaStore(cur map[string]string) MetaStore {
	m := MetaStore{}
	for _, k := range sortedKeys(cur) {
		m.Update(k, cur[k], 0)
	}
	return m
}

// Update records value as the current value of key.
// Recording the current value again is a no-op.
func (m *MetaStore) Update(key, value string, gen int64) {
	if m.entries == nil {
		m.entries = make(map[string][]MetaValue)
	}
	if cur, ok := m.Cur(key); ok && cur == value {
		return
	}
	m.entries[key] = append(m.entries[key], MetaValue{Value: value, Gen: gen})
}

// Cur returns the current value of key.
func (m MetaStore) Cur(key string) (string, bool) {
	hist := m.entries[key]
	if len(hist) == 0 {
		return "", false
	}
	return hist[len(hist)-1].Value, true
}

// History returns every recorded value of key, oldest first.
func (m MetaStore) History(key string) []MetaValue {
	return slices.Clone(m.entries[key])
}

// Keys returns the recorded property names in sorted order.
func (m MetaStore) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns an independent copy of the store.
func (m MetaStore) Clone() MetaStore {
	if m.entries == nil {
		return MetaStore{}
	}
	c := MetaStore{entries: make(map[string][]MetaValue, len(m.entries))}
	for k, hist := range m.entries {
		c.entries[k] = slices.Clone(hist)
	}
	return c
}

// Len returns the number of recorded properties.
func (m MetaStore) Len() int {
	return len(m.entries)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
