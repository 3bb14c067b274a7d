package vm

import "sync"

// SymbolTable interns symbol names. Symbols double as selectors: the
// ID assigned here is the index methods occupy in a vtable.
type SymbolTable struct {
	mu     sync.RWMutex
	byName map[string]uint32
	byID   []string
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]uint32),
	}
}

// Intern returns the ID for name, assigning a new one on first use.
func (t *SymbolTable) Intern(name string) uint32 {
	t.mu.RLock()
	if id, ok := t.byName[name]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := uint32(len(t.byID))
	t.byName[name] = id
	t.byID = append(t.byID, name)
	return id
}

// Lookup returns the ID for name without interning.
func (t *SymbolTable) Lookup(name string) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the name for id, or "" if id was never assigned.
func (t *SymbolTable) Name(id uint32) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return ""
	}
	return t.byID[id]
}

// Count returns the number of interned symbols.
func (t *SymbolTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
