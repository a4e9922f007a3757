// Package chat implements the matchmaking and session-relay core:
// a registry of live participants, a waiting pool, a pairing engine,
// and a relay that forwards chat events between paired participants.
//
// All matchmaking state lives in a single Hub and every mutation runs
// under one mutex, so pairing decisions are atomic with respect to
// concurrent requests. Network I/O stays outside the lock: the Emitter
// must never block.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"driftchat/internal/domain"
	"driftchat/internal/identity"
)

const rateWindow = time.Minute

// Options configures relay limits.
type Options struct {
	MaxMessageLength     int
	MaxMessagesPerMinute int
}

// Hub owns all matchmaking state: the participant registry, the
// waiting pool, and active sessions.
type Hub struct {
	emitter Emitter
	rec     Recorder
	opts    Options

	mu           sync.Mutex
	participants map[string]*domain.Participant
	sessions     map[string]*domain.Session // keyed by each member's ID
	pool         *waitPool
	limiters     map[string]*rateLimiter
}

// NewHub creates a hub that emits events through emitter. rec may be
// nil to disable lifetime counters.
func NewHub(emitter Emitter, rec Recorder, opts Options) *Hub {
	return &Hub{
		emitter:      emitter,
		rec:          rec,
		opts:         opts,
		participants: make(map[string]*domain.Participant),
		sessions:     make(map[string]*domain.Session),
		pool:         newWaitPool(),
		limiters:     make(map[string]*rateLimiter),
	}
}

// Register creates a new idle participant and returns its fresh
// connection identifier.
func (h *Hub) Register() string {
	id := identity.NewParticipantID()

	h.mu.Lock()
	h.participants[id] = &domain.Participant{
		ID:          id,
		Status:      domain.StatusIdle,
		ConnectedAt: time.Now(),
	}
	online := len(h.participants)
	h.broadcastStatsLocked()
	h.mu.Unlock()

	if h.rec != nil {
		go h.rec.PeakOnline(online)
	}
	slog.Info("Participant registered", "participant_id", id, "online", online)
	return id
}

// Unregister removes the participant from the pool and any session
// before deleting it. Idempotent: a second call for the same id is a
// no-op. The former partner, if any, is notified.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	if _, ok := h.participants[id]; !ok {
		h.mu.Unlock()
		return
	}

	h.pool.remove(id)
	if partner := h.teardownSessionLocked(id); partner != "" {
		h.emitLocked(partner, NewPartnerLeft())
	}
	delete(h.participants, id)
	delete(h.limiters, id)
	online := len(h.participants)
	h.broadcastStatsLocked()
	h.mu.Unlock()

	slog.Info("Participant unregistered", "participant_id", id, "online", online)
}

// Lookup returns a copy of the participant's current state.
func (h *Hub) Lookup(id string) (domain.Participant, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// FindPartner pairs the requester with the oldest compatible waiting
// participant, or enqueues it when none is eligible. A requester that
// is already chatting has its current session ended first, with the
// old partner notified.
//
// The scan, claim, and session creation all happen under the hub lock,
// so two concurrent requests can never claim the same candidate.
func (h *Hub) FindPartner(id string, rawTags []string) {
	tags := domain.NormalizeTags(rawTags)

	h.mu.Lock()
	defer h.mu.Unlock()

	requester, ok := h.participants[id]
	if !ok {
		return
	}

	if partner := h.teardownSessionLocked(id); partner != "" {
		h.emitLocked(partner, NewPartnerLeft())
	}

	var chosen *domain.WaitingEntry
	for entry := range h.pool.candidates(id) {
		// The entry may be stale if the candidate's connection raced a
		// disconnect; drop it and keep scanning.
		if _, live := h.participants[entry.ID]; !live {
			h.pool.remove(entry.ID)
			continue
		}
		if domain.TagsMatch(tags, entry.Tags) {
			chosen = entry
			break
		}
	}

	if chosen == nil {
		h.enqueueLocked(requester, tags)
		h.emitLocked(id, NewWaiting())
		h.broadcastStatsLocked()
		return
	}

	h.pool.remove(id)
	h.pool.remove(chosen.ID)
	h.startSessionLocked(requester, h.participants[chosen.ID])
	h.broadcastStatsLocked()
}

// RelayMessage trims, truncates, rate-limits, and forwards a chat
// message to the sender's partner. Empty results are dropped silently;
// a sender with no session gets error_no_partner; an over-limit sender
// gets error_ratelimit and the message is dropped.
func (h *Hub) RelayMessage(id, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[id]
	if !ok {
		h.emitLocked(id, NewNoPartner())
		return
	}

	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > h.opts.MaxMessageLength {
		text = string(runes[:h.opts.MaxMessageLength])
	}
	if text == "" {
		return
	}

	now := time.Now()
	if !h.limiterLocked(id).allow(now) {
		slog.Debug("Message rate limit exceeded", "participant_id", id)
		h.emitLocked(id, NewRateLimited())
		return
	}

	partner := sess.Partner(id)
	if _, live := h.participants[partner]; !live {
		// Partner vanished between pairing and delivery; drop silently.
		return
	}
	h.emitLocked(partner, NewMessageReceive(text, now.UnixMilli()))

	if h.rec != nil {
		go h.rec.MessageRelayed()
	}
}

// RelayTyping forwards a typing start/stop indicator to the partner.
// No rate limiting; silently no-ops without a session.
func (h *Hub) RelayTyping(id string, started bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[id]
	if !ok {
		return
	}
	partner := sess.Partner(id)
	if _, live := h.participants[partner]; !live {
		return
	}
	h.emitLocked(partner, NewTyping(started))
}

// EndSession tears down the session for id and its partner, returning
// both to idle. Safe to call when no session exists.
func (h *Hub) EndSession(id string, notifyPartner bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	partner := h.teardownSessionLocked(id)
	if partner == "" {
		return
	}
	if notifyPartner {
		h.emitLocked(partner, NewPartnerLeft())
	}
	h.broadcastStatsLocked()
}

// enqueueLocked adds the participant to the waiting pool. No-op for a
// chatting participant: the caller must end the session first.
func (h *Hub) enqueueLocked(p *domain.Participant, tags []string) {
	if p.Status == domain.StatusChatting {
		return
	}
	p.Status = domain.StatusWaiting
	p.Tags = tags
	now := time.Now()
	// A re-enqueue keeps the original enqueue time; the participant's
	// waiting-since timestamp must agree with the pool entry.
	if h.pool.add(p.ID, tags, now) {
		p.WaitingSince = now
	}
}

// startSessionLocked records the mutual pairing and tells each side
// the other's fresh display name.
func (h *Hub) startSessionLocked(a, b *domain.Participant) {
	displayA := newDisplayName()
	displayB := newDisplayName()
	sess := domain.NewSession(a.ID, b.ID, displayA, displayB, time.Now())
	h.sessions[a.ID] = sess
	h.sessions[b.ID] = sess

	a.Status = domain.StatusChatting
	b.Status = domain.StatusChatting

	h.emitLocked(a.ID, NewMatched(displayB))
	h.emitLocked(b.ID, NewMatched(displayA))

	if h.rec != nil {
		go h.rec.ChatStarted()
	}
	slog.Info("Session started", "participant_a", a.ID, "participant_b", b.ID)
}

// teardownSessionLocked removes id's session, returning the idle
// status to any member that is still registered. Returns the former
// partner's ID, or "" when id had no session.
func (h *Hub) teardownSessionLocked(id string) string {
	sess, ok := h.sessions[id]
	if !ok {
		return ""
	}
	a, b := sess.Members()
	delete(h.sessions, a)
	delete(h.sessions, b)

	for _, member := range []string{a, b} {
		if p, ok := h.participants[member]; ok {
			p.Status = domain.StatusIdle
		}
	}
	return sess.Partner(id)
}

func (h *Hub) limiterLocked(id string) *rateLimiter {
	l, ok := h.limiters[id]
	if !ok {
		l = newRateLimiter(h.opts.MaxMessagesPerMinute, rateWindow)
		h.limiters[id] = l
	}
	return l
}

// emitLocked delivers an event while holding the hub lock. The Emitter
// contract requires non-blocking delivery, so this cannot stall the
// hub on a slow connection.
func (h *Hub) emitLocked(id string, event Event) {
	h.emitter.Emit(id, event)
}

func newDisplayName() string {
	name, err := identity.NewDisplayName()
	if err != nil {
		slog.Error("Failed to generate display name", "error", err)
		return "Stranger"
	}
	return name
}

// StartStatsBroadcaster pushes a stats_update to every connected
// participant on a fixed interval until ctx is cancelled.
func (h *Hub) StartStatsBroadcaster(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Stats broadcaster started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				h.BroadcastStats()
			case <-ctx.Done():
				slog.Info("Stats broadcaster shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
