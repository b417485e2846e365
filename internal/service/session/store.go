package session

import (
	"context"
	"errors"
	"sync"

	"voicewidget/internal/model/chat"
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
)

// Store owns the in-memory mapping from session id to ordered turn history.
// Session ids are opaque client-generated tokens; the first turn of every
// session is the scenario system prompt and all later turns are append-only.
//
// The store never evicts: histories grow for the process lifetime and are
// lost on restart. That is an accepted property of this design, not an
// oversight.
type Store struct {
	mu       sync.RWMutex
	turns    map[string][]chat.Turn
	watchers map[string][]chan chat.Turn
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		turns:    make(map[string][]chat.Turn),
		watchers: make(map[string][]chan chat.Turn),
	}
}

// Exists reports whether a session has been created for the given id.
func (s *Store) Exists(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.turns[id]
	return ok
}

// Create provisions a session seeded with exactly one system turn. Creating
// an id that is already live returns ErrSessionExists; existing history is
// never reset.
func (s *Store) Create(_ context.Context, id, systemPrompt string) error {
	if id == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[id]; ok {
		return ErrSessionExists
	}

	s.turns[id] = append(make([]chat.Turn, 0, 16), chat.TextTurn(chat.RoleSystem, systemPrompt))
	return nil
}

// Append adds one turn to the end of the session history. Appending to an
// unknown id mutates nothing and returns ErrSessionNotFound. The store mutex
// serializes concurrent appends for the same id, so interleaved requests may
// land in either order but none is ever lost.
func (s *Store) Append(_ context.Context, id string, turn chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[id]; !ok {
		return ErrSessionNotFound
	}

	s.turns[id] = append(s.turns[id], turn)
	for _, ch := range s.watchers[id] {
		select {
		case ch <- turn:
		default:
			// Slow subscriber: drop rather than stall the append path.
		}
	}
	return nil
}

// Read returns a copy of the full history, in append order. The result is
// used verbatim as the prompt context sent to the model.
func (s *Store) Read(_ context.Context, id string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// Subscribe registers a watcher for turns appended to the session after the
// call. The returned cancel func must be invoked to release the watcher.
func (s *Store) Subscribe(_ context.Context, id string) (<-chan chat.Turn, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[id]; !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan chat.Turn, 16)
	s.watchers[id] = append(s.watchers[id], ch)
	return ch, s.removeWatcher(id, ch), nil
}

// ReadAndSubscribe snapshots the history and registers a watcher under a
// single lock acquisition, so a turn appended concurrently lands in exactly
// one of the two: the returned snapshot or the channel. Feed consumers must
// use this instead of Read followed by Subscribe, which would leave a window
// where an append hits neither.
func (s *Store) ReadAndSubscribe(_ context.Context, id string) ([]chat.Turn, <-chan chat.Turn, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.turns[id]
	if !ok {
		return nil, nil, nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)

	ch := make(chan chat.Turn, 16)
	s.watchers[id] = append(s.watchers[id], ch)
	return copied, ch, s.removeWatcher(id, ch), nil
}

func (s *Store) removeWatcher(id string, ch chan chat.Turn) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		watchers := s.watchers[id]
		for i, w := range watchers {
			if w == ch {
				s.watchers[id] = append(watchers[:i], watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
}
