package view

import "sync"

// Kind names a class of request whose results replace view data
type Kind string

const (
	KindStars    Kind = "stars"
	KindTrending Kind = "trending"
	KindSearch   Kind = "search"
)

// Ticket identifies one issued request
type Ticket struct {
	Kind Kind
	Seq  uint64
}

// Session owns a State and guards it against results from superseded
// requests. A result is applied only if its ticket is the latest issued for
// its kind. Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	state   State
	seq     uint64
	latest  map[Kind]uint64
	pending map[Kind]bool
}

// NewSession creates a session with an empty state
func NewSession(pageSize int) *Session {
	return &Session{
		state:   NewState(pageSize),
		latest:  make(map[Kind]uint64),
		pending: make(map[Kind]bool),
	}
}

// Begin issues a ticket that supersedes every earlier ticket of the same kind.
// A list fetch also supersedes any search still running, since that search
// ranks the list being replaced.
func (s *Session) Begin(kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.latest[kind] = s.seq
	s.pending[kind] = true

	if kind != KindSearch {
		s.latest[KindSearch] = s.seq
		s.pending[KindSearch] = false
	}

	return Ticket{Kind: kind, Seq: s.seq}
}

// Accept reports whether t is still the latest ticket for its kind
func (s *Session) Accept(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.acceptLocked(t)
}

func (s *Session) acceptLocked(t Ticket) bool {
	return t.Seq != 0 && s.latest[t.Kind] == t.Seq
}

// Pending reports whether the latest request of kind has not completed yet
func (s *Session) Pending(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending[kind]
}

// Apply runs fn on the state if t is current and marks the request complete.
// Stale tickets leave the state untouched and return false.
func (s *Session) Apply(t Ticket, fn func(State) State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(t) {
		return false
	}

	s.state = fn(s.state)
	s.pending[t.Kind] = false

	return true
}

// Update runs fn on the state unconditionally, for synchronous changes such as paging
func (s *Session) Update(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fn(s.state)

	return s.state
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}
