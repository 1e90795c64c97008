// Package session holds per-conversation state: the last fetched result
// set, intent frequency counters, and the pending-unlock machinery.
//
// All state is in-memory and ephemeral; nothing here survives a restart.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/intent"
)

// pendingTTL bounds how long a staged unlock or an open door-options list
// stays answerable. After this, the next turn starts clean.
const pendingTTL = 5 * time.Minute

// PendingUnlock is one staged unlock awaiting an explicit yes.
type PendingUnlock struct {
	AccessPointID   string
	AccessPointName string
}

// State is the conversation state for one room+sender pair.
//
// Two mutually exclusive "awaiting further input" conditions exist:
// a PendingUnlock (awaiting yes/no) or PendingDoorOptions (awaiting a
// numbered choice). AwaitingConfirmation is true exactly when
// PendingUnlock is set; the setters below maintain this.
type State struct {
	ID string

	// LastEntries is the most recent event result set, reused by the
	// context-dependent filters (denied/granted).
	LastEntries []alta.AccessEvent
	LastIntent  intent.Kind

	// freqMu guards Frequency: Track writes from the message handler while
	// the status endpoint aggregates across sessions.
	freqMu sync.Mutex
	// Frequency counts resolved intents per kind, feeding TopQuestions.
	// Access it through Track and snapshotFrequency.
	Frequency map[intent.Kind]int

	PendingUnlock        *PendingUnlock
	PendingDoorOptions   []alta.AccessPoint
	AwaitingConfirmation bool

	// pendingSince is when the current pending state was staged; zero when
	// nothing is pending.
	pendingSince time.Time
}

func newState() *State {
	return &State{
		ID:        uuid.NewString(),
		Frequency: make(map[intent.Kind]int),
	}
}

// SetPendingUnlock stages an unlock for confirmation, clearing any open
// door-options list.
func (s *State) SetPendingUnlock(p PendingUnlock) {
	s.PendingUnlock = &p
	s.PendingDoorOptions = nil
	s.AwaitingConfirmation = true
	s.pendingSince = time.Now()
}

// SetDoorOptions offers a numbered list of candidate doors, clearing any
// staged unlock.
func (s *State) SetDoorOptions(options []alta.AccessPoint) {
	s.PendingDoorOptions = options
	s.PendingUnlock = nil
	s.AwaitingConfirmation = false
	s.pendingSince = time.Now()
}

// ClearPending drops both pending conditions.
func (s *State) ClearPending() {
	s.PendingUnlock = nil
	s.PendingDoorOptions = nil
	s.AwaitingConfirmation = false
	s.pendingSince = time.Time{}
}

// expirePending clears pending state that has outlived pendingTTL.
func (s *State) expirePending(now time.Time) {
	if s.pendingSince.IsZero() {
		return
	}
	if now.Sub(s.pendingSince) > pendingTTL {
		s.ClearPending()
	}
}

// Track records one resolved intent in the frequency counters.
func (s *State) Track(kind intent.Kind) {
	s.freqMu.Lock()
	s.Frequency[kind]++
	s.freqMu.Unlock()
	s.LastIntent = kind
}

// snapshotFrequency copies the frequency counters under the lock so the
// aggregation in TopQuestions never reads a map Track is writing.
func (s *State) snapshotFrequency() map[intent.Kind]int {
	s.freqMu.Lock()
	defer s.freqMu.Unlock()

	out := make(map[intent.Kind]int, len(s.Frequency))
	for kind, count := range s.Frequency {
		out[kind] = count
	}
	return out
}

// Reset clears the conversational context: cached entries, pending state,
// and last intent. Frequency counters survive a reset so the status page
// keeps meaningful totals.
func (s *State) Reset() {
	s.LastEntries = nil
	s.LastIntent = ""
	s.ClearPending()
}

// IntentCount is one row of the TopQuestions summary.
type IntentCount struct {
	Kind  intent.Kind
	Count int
}
