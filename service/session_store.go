package service

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// sessionKind discriminates the game a stored session belongs to.
type sessionKind string

const (
	sessionKindMines     sessionKind = "mines"
	sessionKindBlackjack sessionKind = "blackjack"
)

// session is one in-flight stateful game, keyed by the owning player.
// The stake is already escrowed; expiry forfeits it.
type session struct {
	userID   int64
	kind     sessionKind
	deadline time.Time
	data     any
}

func (s *session) expired(now time.Time) bool {
	return now.After(s.deadline)
}

// SessionStore holds in-flight stateful game sessions in memory,
// enforcing at most one session per player across all games. Expired
// sessions are dropped lazily on access and swept by a janitor.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore creates a session store and starts its expiry sweep.
func NewSessionStore(sweepInterval time.Duration) *SessionStore {
	st := &SessionStore{
		sessions: make(map[int64]*session),
		done:     make(chan struct{}),
	}
	go st.sweep(sweepInterval)
	return st
}

// Stop terminates the janitor. Pending sessions are abandoned; their
// stakes stay forfeited.
func (st *SessionStore) Stop() {
	st.stopOnce.Do(func() { close(st.done) })
}

func (st *SessionStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case now := <-ticker.C:
			st.mu.Lock()
			for userID, s := range st.sessions {
				if s.expired(now) {
					delete(st.sessions, userID)
					log.WithFields(log.Fields{
						"userID": userID,
						"game":   s.kind,
					}).Debug("Expired game session swept")
				}
			}
			st.mu.Unlock()
		}
	}
}

// put registers a session for a player, rejecting if any unexpired
// session already exists for them.
func (st *SessionStore) put(s *session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, ok := st.sessions[s.userID]; ok && !existing.expired(time.Now()) {
		return fmt.Errorf("a %s session is already in progress: %w", existing.kind, ErrStateConflict)
	}
	st.sessions[s.userID] = s
	return nil
}

// get returns the player's session of the given kind. Expired sessions
// are dropped and reported as absent.
func (st *SessionStore) get(userID int64, kind sessionKind) (*session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("no %s session in progress: %w", kind, ErrNotFound)
	}
	if s.expired(time.Now()) {
		delete(st.sessions, userID)
		return nil, fmt.Errorf("the %s session timed out: %w", s.kind, ErrNotFound)
	}
	if s.kind != kind {
		return nil, fmt.Errorf("no %s session in progress: %w", kind, ErrNotFound)
	}
	return s, nil
}

// remove drops a player's session once it reaches a terminal state.
func (st *SessionStore) remove(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
