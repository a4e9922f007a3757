package chat

import (
	"iter"
	"slices"
	"time"

	"driftchat/internal/domain"
)

// waitPool is the ordered set of participants seeking a partner.
// It is not safe for concurrent use; the Hub's mutex guards it.
type waitPool struct {
	order   []string
	entries map[string]*domain.WaitingEntry
}

func newWaitPool() *waitPool {
	return &waitPool{entries: make(map[string]*domain.WaitingEntry)}
}

// add inserts or replaces the waiting entry for id, reporting whether
// the entry is new. A replaced entry keeps its original position in
// the queue and its original enqueue time; only its tags change.
func (p *waitPool) add(id string, tags []string, now time.Time) bool {
	if existing, ok := p.entries[id]; ok {
		existing.Tags = tags
		return false
	}
	p.order = append(p.order, id)
	p.entries[id] = &domain.WaitingEntry{ID: id, Tags: tags, EnqueuedAt: now}
	return true
}

// remove deletes id from the pool, reporting whether it was present.
func (p *waitPool) remove(id string) bool {
	if _, ok := p.entries[id]; !ok {
		return false
	}
	delete(p.entries, id)
	if i := slices.Index(p.order, id); i >= 0 {
		p.order = slices.Delete(p.order, i, i+1)
	}
	return true
}

func (p *waitPool) contains(id string) bool {
	_, ok := p.entries[id]
	return ok
}

func (p *waitPool) len() int {
	return len(p.entries)
}

// candidates yields every entry other than exclude in insertion order
// (oldest first). The sequence is restartable and reflects removals
// made between iterations.
func (p *waitPool) candidates(exclude string) iter.Seq[*domain.WaitingEntry] {
	return func(yield func(*domain.WaitingEntry) bool) {
		for _, id := range slices.Clone(p.order) {
			if id == exclude {
				continue
			}
			entry, ok := p.entries[id]
			if !ok {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}
