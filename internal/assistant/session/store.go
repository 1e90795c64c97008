package session

import (
	"sort"
	"sync"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/intent"
)

// Store keeps one State per room+sender pair. Safe for concurrent use by
// the message handler goroutines.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

func sessionKey(roomID, senderID string) string {
	return roomID + ":" + senderID
}

// Get returns the state for the pair, creating it on first sight. Pending
// state past its TTL is expired before the caller sees it.
func (st *Store) Get(roomID, senderID string) *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := sessionKey(roomID, senderID)
	s, ok := st.sessions[key]
	if !ok {
		s = newState()
		st.sessions[key] = s
	}
	s.expirePending(time.Now())
	return s
}

// Reset clears the conversational context for the pair. A pair never seen
// before is a no-op.
func (st *Store) Reset(roomID, senderID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[sessionKey(roomID, senderID)]; ok {
		s.Reset()
	}
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// TopQuestions aggregates intent frequency across all sessions and returns
// the n most asked kinds, most frequent first. Ties break by kind name so
// the output is stable.
func (st *Store) TopQuestions(n int) []IntentCount {
	st.mu.Lock()
	states := make([]*State, 0, len(st.sessions))
	for _, s := range st.sessions {
		states = append(states, s)
	}
	st.mu.Unlock()

	totals := make(map[intent.Kind]int)
	for _, s := range states {
		for kind, count := range s.snapshotFrequency() {
			totals[kind] += count
		}
	}

	out := make([]IntentCount, 0, len(totals))
	for kind, count := range totals {
		out = append(out, IntentCount{Kind: kind, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
