package store

import "sync"

// Entry is one recorded URL write.
type Entry struct {
	Mode  HistoryMode
	Query string
}

// MemoryHistory is a History that keeps a browser-like stack in memory.
// Replace overwrites the current entry, Push appends one.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	writes  []Entry
}

func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{entries: []string{initial}}
}

func (h *MemoryHistory) Replace(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = query
	h.writes = append(h.writes, Entry{Mode: HistoryReplace, Query: query})
}

func (h *MemoryHistory) Push(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, query)
	h.writes = append(h.writes, Entry{Mode: HistoryPush, Query: query})
}

// Back pops the current entry and returns the previous one. ok is false at
// the first entry.
func (h *MemoryHistory) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

func (h *MemoryHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Writes returns every write in order.
func (h *MemoryHistory) Writes() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.writes...)
}
