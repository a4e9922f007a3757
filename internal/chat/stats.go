package chat

// Stats is a point-in-time view of participant counts, derived from
// the live registry, pool, and session structures rather than from
// separately tracked counters.
type Stats struct {
	Online   int `json:"online"`
	Waiting  int `json:"waiting"`
	Chatting int `json:"chatting"`
}

// Snapshot computes the current counts. Chatting counts participants,
// not sessions, so it is always twice the number of live sessions.
func (h *Hub) Snapshot() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() Stats {
	return Stats{
		Online:  len(h.participants),
		Waiting: h.pool.len(),
		// sessions holds one key per member, so its length already
		// counts chatting participants.
		Chatting: len(h.sessions),
	}
}

// BroadcastStats emits the current snapshot to every connected
// participant.
func (h *Hub) BroadcastStats() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastStatsLocked()
}

func (h *Hub) broadcastStatsLocked() {
	update := NewStatsUpdate(h.snapshotLocked())
	for id := range h.participants {
		h.emitLocked(id, update)
	}
}
