package chat

// Server→client event names. These are the wire-level "type" values of
// the JSON envelopes delivered over a participant's connection.
const (
	EventWaiting        = "waiting"
	EventMatched        = "matched"
	EventMessageReceive = "message_receive"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
	EventPartnerLeft    = "partner_left"
	EventErrRateLimit   = "error_ratelimit"
	EventErrNoPartner   = "error_no_partner"
	EventStatsUpdate    = "stats_update"
)

// Event is a server→client message delivered through an Emitter.
// Each variant carries its own wire type tag so the transport can
// marshal it directly.
type Event interface {
	event()
}

// Waiting tells the requester it has been placed in the waiting pool.
type Waiting struct {
	Type string `json:"type"`
}

// NewWaiting creates a waiting event.
func NewWaiting() Waiting { return Waiting{Type: EventWaiting} }

// Matched tells a participant it has been paired. PeerID is the
// ephemeral display name of the *other* side, never its connection ID.
type Matched struct {
	Type   string `json:"type"`
	PeerID string `json:"peerId"`
}

// NewMatched creates a matched event.
func NewMatched(peerDisplayName string) Matched {
	return Matched{Type: EventMatched, PeerID: peerDisplayName}
}

// MessageReceive carries a chat message forwarded from the partner.
type MessageReceive struct {
	Type string `json:"type"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// NewMessageReceive creates a message event with a millisecond timestamp.
func NewMessageReceive(text string, ts int64) MessageReceive {
	return MessageReceive{Type: EventMessageReceive, Text: text, TS: ts}
}

// Typing forwards a start/stop typing indicator from the partner.
type Typing struct {
	Type string `json:"type"`
}

// NewTyping creates a typing_start or typing_stop event.
func NewTyping(started bool) Typing {
	if started {
		return Typing{Type: EventTypingStart}
	}
	return Typing{Type: EventTypingStop}
}

// PartnerLeft tells a participant its partner ended the chat or
// disconnected.
type PartnerLeft struct {
	Type string `json:"type"`
}

// NewPartnerLeft creates a partner_left event.
func NewPartnerLeft() PartnerLeft { return PartnerLeft{Type: EventPartnerLeft} }

// RateLimited tells the sender its message was dropped for exceeding
// the per-minute send limit.
type RateLimited struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewRateLimited creates a rate-limit error event.
func NewRateLimited() RateLimited {
	return RateLimited{Type: EventErrRateLimit, Message: "sending too fast, slow down"}
}

// NoPartner tells the sender it has no active session to relay into.
type NoPartner struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewNoPartner creates a no-partner error event.
func NewNoPartner() NoPartner {
	return NoPartner{Type: EventErrNoPartner, Message: "no active chat partner"}
}

// StatsUpdate carries the current participant counts.
type StatsUpdate struct {
	Type     string `json:"type"`
	Online   int    `json:"online"`
	Waiting  int    `json:"waiting"`
	Chatting int    `json:"chatting"`
}

// NewStatsUpdate wraps a stats snapshot for broadcast.
func NewStatsUpdate(s Stats) StatsUpdate {
	return StatsUpdate{Type: EventStatsUpdate, Online: s.Online, Waiting: s.Waiting, Chatting: s.Chatting}
}

func (Waiting) event()        {}
func (Matched) event()        {}
func (MessageReceive) event() {}
func (Typing) event()         {}
func (PartnerLeft) event()    {}
func (RateLimited) event()    {}
func (NoPartner) event()      {}
func (StatsUpdate) event()    {}

// Emitter delivers a server event to one connected participant.
// Implementations must be non-blocking and silently no-op if the
// participant is no longer connected.
type Emitter interface {
	Emit(id string, event Event)
}

// Recorder receives content-free lifetime counters from the hub.
// Implementations must tolerate concurrent calls.
type Recorder interface {
	ChatStarted()
	MessageRelayed()
	PeakOnline(online int)
}
