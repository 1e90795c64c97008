// Package executor runs resolved intents against the API gateway and the
// session state. It owns the two-phase unlock machine: unlock intents only
// stage a pending action, and the destructive call fires exclusively from an
// explicit confirmation turn.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/intent"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/session"
)

// Gateway is the slice of the Alta API the executor needs. *alta.Client
// satisfies it; tests substitute a fake.
type Gateway interface {
	CurrentUser(ctx context.Context) (*alta.User, error)
	AccessEvents(ctx context.Context) ([]alta.AccessEvent, error)
	AccessEventByGUID(ctx context.Context, guid string) (*alta.AccessEvent, error)
	AccessPoints(ctx context.Context) ([]alta.AccessPoint, error)
	AvailableAccessPoints(ctx context.Context) ([]alta.AccessPoint, error)
	Unlock(ctx context.Context, accessPointID string) error
}

// ErrorKind classifies execution failures for the formatter.
type ErrorKind string

const (
	ErrValidation  ErrorKind = "validation"
	ErrNotFound    ErrorKind = "not_found"
	ErrNotPending  ErrorKind = "not_pending"
	ErrAuth        ErrorKind = "auth"
	ErrPermission  ErrorKind = "permission"
	ErrRateLimited ErrorKind = "rate_limited"
	ErrServer      ErrorKind = "server"
	ErrNetwork     ErrorKind = "network"
	ErrTimeout     ErrorKind = "timeout"
	ErrUnknown     ErrorKind = "unknown"
)

// Error is a classified execution failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// apiError converts a gateway failure into an execution Error.
func apiError(err error) *Error {
	switch alta.KindOf(err) {
	case alta.KindAuth:
		return &Error{Kind: ErrAuth, Message: err.Error()}
	case alta.KindPermission:
		return &Error{Kind: ErrPermission, Message: err.Error()}
	case alta.KindNotFound:
		return &Error{Kind: ErrNotFound, Message: err.Error()}
	case alta.KindRateLimited:
		return &Error{Kind: ErrRateLimited, Message: err.Error()}
	case alta.KindServer:
		return &Error{Kind: ErrServer, Message: err.Error()}
	case alta.KindNetwork:
		return &Error{Kind: ErrNetwork, Message: err.Error()}
	case alta.KindTimeout:
		return &Error{Kind: ErrTimeout, Message: err.Error()}
	default:
		return &Error{Kind: ErrUnknown, Message: err.Error()}
	}
}

// ResultType tells the formatter which Result fields are populated.
type ResultType string

const (
	ResultEntries        ResultType = "entries"
	ResultAccessPoints   ResultType = "access_points"
	ResultEvent          ResultType = "event"
	ResultAccount        ResultType = "account"
	ResultHelp           ResultType = "help"
	ResultUnsupported    ResultType = "unsupported"
	ResultConfirmPrompt  ResultType = "confirm_prompt"
	ResultDoorOptions    ResultType = "door_options"
	ResultUnlockDone     ResultType = "unlock_done"
	ResultUnlockCanceled ResultType = "unlock_canceled"
	ResultResetDone      ResultType = "reset_done"
)

// Result is the normalized outcome of one executed intent.
type Result struct {
	Type    ResultType
	Entries []alta.AccessEvent
	Points  []alta.AccessPoint
	Event   *alta.AccessEvent
	User    *alta.User

	// Label names the entry set shown ("today", "yesterday", "the last 7
	// days", ...); empty for non-entry results.
	Label string

	// Door names the access point for confirm prompts and unlock outcomes.
	Door string
	// AvailableOnly distinguishes the available-points listing from the
	// full listing.
	AvailableOnly bool
}

// Executor runs resolved intents. The clock is injectable for the boundary
// tests.
type Executor struct {
	gateway Gateway
	now     func() time.Time
}

// New creates an Executor over the given gateway.
func New(gateway Gateway) *Executor {
	return &Executor{gateway: gateway, now: time.Now}
}

// Execute runs one intent against the session state. It mutates the session
// (entry cache, pending state) and returns either a Result or an *Error.
func (x *Executor) Execute(ctx context.Context, in intent.Intent, s *session.State) (*Result, *Error) {
	switch in.Kind {
	case intent.KindGetAccessPoints:
		return x.listAccessPoints(ctx, false)
	case intent.KindGetAvailableAccessPoints:
		return x.listAccessPoints(ctx, true)
	case intent.KindGetEntriesToday:
		return x.entries(ctx, s, "today", func(events []alta.AccessEvent) []alta.AccessEvent {
			return FilterToday(events, x.now())
		})
	case intent.KindGetEntriesYesterday:
		return x.entries(ctx, s, "yesterday", func(events []alta.AccessEvent) []alta.AccessEvent {
			return FilterYesterday(events, x.now())
		})
	case intent.KindGetEntriesLastNDays:
		days := in.Params.Days
		if days <= 0 {
			days = 7
		}
		return x.entries(ctx, s, fmt.Sprintf("the last %d days", days), func(events []alta.AccessEvent) []alta.AccessEvent {
			return FilterLastNDays(events, x.now(), days)
		})
	case intent.KindGetLastEntry:
		return x.lastEntry(ctx)
	case intent.KindGetDeniedEntries:
		return x.contextFilter(ctx, s, "denied", FilterDenied)
	case intent.KindGetGrantedEntries:
		return x.contextFilter(ctx, s, "granted", FilterGranted)
	case intent.KindGetEventByGUID:
		return x.eventByGUID(ctx, in.Params.GUID)
	case intent.KindUnlockByID:
		return x.unlockByID(ctx, in.Params.AccessPointID, s)
	case intent.KindUnlockByName:
		return x.unlockByName(ctx, in.Params.DoorQuery, s)
	case intent.KindSelectDoorOption:
		return x.selectDoorOption(in.Params.Selection, s)
	case intent.KindConfirmUnlock:
		return x.confirmUnlock(ctx, s)
	case intent.KindCancelUnlock:
		s.ClearPending()
		return &Result{Type: ResultUnlockCanceled}, nil
	case intent.KindShowAccount:
		return x.account(ctx)
	case intent.KindShowHelp:
		return &Result{Type: ResultHelp}, nil
	case intent.KindReset:
		s.Reset()
		return &Result{Type: ResultResetDone}, nil
	default:
		return &Result{Type: ResultUnsupported}, nil
	}
}

// entries runs a range filter over the event log and stores the filtered
// result as the session's context set, so a later "show only denied" chains
// off this answer rather than the whole log.
func (x *Executor) entries(ctx context.Context, s *session.State, label string, filter func([]alta.AccessEvent) []alta.AccessEvent) (*Result, *Error) {
	events, err := x.gateway.AccessEvents(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	filtered := filter(events)
	s.LastEntries = filtered
	return &Result{Type: ResultEntries, Entries: filtered, Label: label}, nil
}

// contextFilter runs an outcome filter over the last result set. When no
// result set is cached yet, it fetches a default 7-day window first and
// makes that the context set.
func (x *Executor) contextFilter(ctx context.Context, s *session.State, label string, filter func([]alta.AccessEvent) []alta.AccessEvent) (*Result, *Error) {
	if len(s.LastEntries) == 0 {
		events, err := x.gateway.AccessEvents(ctx)
		if err != nil {
			return nil, apiError(err)
		}
		s.LastEntries = FilterLastNDays(events, x.now(), 7)
	}
	return &Result{Type: ResultEntries, Entries: filter(s.LastEntries), Label: label}, nil
}

// lastEntry reports the most recent event. Unlike the range queries it does
// not replace the session's context set.
func (x *Executor) lastEntry(ctx context.Context) (*Result, *Error) {
	events, err := x.gateway.AccessEvents(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	newest := MostRecent(events)
	if newest == nil {
		return &Result{Type: ResultEntries, Label: "most recent"}, nil
	}
	return &Result{Type: ResultEvent, Event: newest, Label: "most recent"}, nil
}

func (x *Executor) eventByGUID(ctx context.Context, guid string) (*Result, *Error) {
	evt, err := x.gateway.AccessEventByGUID(ctx, guid)
	if err != nil {
		return nil, apiError(err)
	}
	return &Result{Type: ResultEvent, Event: evt}, nil
}

func (x *Executor) listAccessPoints(ctx context.Context, availableOnly bool) (*Result, *Error) {
	var (
		points []alta.AccessPoint
		err    error
	)
	if availableOnly {
		points, err = x.gateway.AvailableAccessPoints(ctx)
	} else {
		points, err = x.gateway.AccessPoints(ctx)
	}
	if err != nil {
		return nil, apiError(err)
	}
	return &Result{Type: ResultAccessPoints, Points: points, AvailableOnly: availableOnly}, nil
}

func (x *Executor) account(ctx context.Context) (*Result, *Error) {
	user, err := x.gateway.CurrentUser(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	return &Result{Type: ResultAccount, User: user}, nil
}

// unlockByID stages an unlock for the given numeric ID. The door name is
// best-effort: a failed listing falls back to a generic label rather than
// blocking the flow.
func (x *Executor) unlockByID(ctx context.Context, accessPointID string, s *session.State) (*Result, *Error) {
	if accessPointID == "" {
		return nil, &Error{Kind: ErrValidation, Message: "no access point ID given"}
	}

	name := "access point " + accessPointID
	if points, err := x.gateway.AccessPoints(ctx); err == nil {
		for _, p := range points {
			id, idErr := p.ResolveID()
			if idErr == nil && id == accessPointID && p.Name() != "" {
				name = p.Name()
				break
			}
		}
	} else {
		slog.Debug("executor: door name lookup failed, using placeholder", "id", accessPointID, "err", err)
	}

	s.SetPendingUnlock(session.PendingUnlock{AccessPointID: accessPointID, AccessPointName: name})
	return &Result{Type: ResultConfirmPrompt, Door: name}, nil
}

// unlockByName resolves a door-name query to a single staged unlock, a
// numbered choice list, or a not-found error.
func (x *Executor) unlockByName(ctx context.Context, query string, s *session.State) (*Result, *Error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &Error{Kind: ErrValidation,
			Message: "no door name given; say e.g. \"unlock the lobby door\" or \"unlock door 42\""}
	}

	points, err := x.gateway.AccessPoints(ctx)
	if err != nil {
		return nil, apiError(err)
	}

	lowered := strings.ToLower(query)
	var matches []alta.AccessPoint
	for _, p := range points {
		if strings.Contains(strings.ToLower(p.Name()), lowered) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &Error{Kind: ErrNotFound, Message: fmt.Sprintf("no door matching %q", query)}
	case 1:
		id, idErr := matches[0].ResolveID()
		if idErr != nil {
			return nil, &Error{Kind: ErrValidation, Message: idErr.Error()}
		}
		s.SetPendingUnlock(session.PendingUnlock{AccessPointID: id, AccessPointName: matches[0].Name()})
		return &Result{Type: ResultConfirmPrompt, Door: matches[0].Name()}, nil
	default:
		s.SetDoorOptions(matches)
		return &Result{Type: ResultDoorOptions, Points: matches}, nil
	}
}

// selectDoorOption promotes a numbered choice to a staged unlock. An
// out-of-range selection clears the options so the session never sticks in
// an unanswerable state.
func (x *Executor) selectDoorOption(selection int, s *session.State) (*Result, *Error) {
	options := s.PendingDoorOptions
	if len(options) == 0 {
		return nil, &Error{Kind: ErrNotPending, Message: "no door options to choose from"}
	}
	if selection < 1 || selection > len(options) {
		s.ClearPending()
		return nil, &Error{Kind: ErrValidation,
			Message: fmt.Sprintf("choice %d is out of range 1-%d; the options were cleared, please start over", selection, len(options))}
	}

	chosen := options[selection-1]
	id, idErr := chosen.ResolveID()
	if idErr != nil {
		s.ClearPending()
		return nil, &Error{Kind: ErrValidation, Message: idErr.Error()}
	}
	s.SetPendingUnlock(session.PendingUnlock{AccessPointID: id, AccessPointName: chosen.Name()})
	return &Result{Type: ResultConfirmPrompt, Door: chosen.Name()}, nil
}

// confirmUnlock fires the staged unlock. Pending state is cleared on both
// success and failure so a broken door never leaves the session stuck
// awaiting a confirmation that can no longer succeed.
func (x *Executor) confirmUnlock(ctx context.Context, s *session.State) (*Result, *Error) {
	pending := s.PendingUnlock
	if pending == nil {
		return nil, &Error{Kind: ErrNotPending, Message: "nothing pending to confirm"}
	}

	err := x.gateway.Unlock(ctx, pending.AccessPointID)
	s.ClearPending()
	if err != nil {
		return nil, apiError(err)
	}

	slog.Info("executor: unlock confirmed", "access_point_id", pending.AccessPointID, "door", pending.AccessPointName)
	return &Result{Type: ResultUnlockDone, Door: pending.AccessPointName}, nil
}
