// Package intent maps free-form user messages to a closed set of actions.
//
// Matching is deterministic keyword and pattern based; no LLM is involved in
// control decisions. The resolver is a pure function of the message text and
// two conversation flags, so it can be tested exhaustively without any
// session or network machinery.
package intent

// Kind identifies the action the user wants the assistant to take.
type Kind string

const (
	// KindUnknown means no recognisable intent was found.
	KindUnknown Kind = "unsupported"

	KindGetAccessPoints          Kind = "get_access_points"
	KindGetAvailableAccessPoints Kind = "get_available_access_points"
	KindGetEntriesToday          Kind = "get_entries_today"
	KindGetEntriesYesterday      Kind = "get_entries_yesterday"
	KindGetEntriesLastNDays      Kind = "get_entries_last_n_days"
	KindGetLastEntry             Kind = "get_last_entry"
	KindGetDeniedEntries         Kind = "get_denied_entries"
	KindGetGrantedEntries        Kind = "get_granted_entries"
	KindGetEventByGUID           Kind = "get_event_by_guid"
	KindUnlockByID               Kind = "unlock_by_id"
	KindUnlockByName             Kind = "unlock_by_name"
	KindSelectDoorOption         Kind = "select_door_option"
	KindConfirmUnlock            Kind = "confirm_unlock"
	KindCancelUnlock             Kind = "cancel_unlock"
	KindShowAccount              Kind = "show_account"
	KindShowHelp                 Kind = "show_help"
	KindReset                    Kind = "reset"
)

// Params carries the kind-specific parameters of a resolved intent.
// Only the fields relevant to the Kind are populated.
type Params struct {
	// Days is the range length for KindGetEntriesLastNDays.
	Days int
	// AccessPointID is the numeric door ID for KindUnlockByID.
	AccessPointID string
	// DoorQuery is the name query for KindUnlockByName. May be empty, which
	// is a valid resolution surfaced as an error at execution time.
	DoorQuery string
	// GUID is the event identifier for KindGetEventByGUID.
	GUID string
	// Selection is the 1-based choice for KindSelectDoorOption.
	Selection int
}

// Intent is the resolved action descriptor for one user turn.
// Immutable once resolved.
type Intent struct {
	Kind   Kind
	Params Params

	// UsesContext marks intents that filter a previously cached result set
	// instead of calling the API fresh.
	UsesContext bool
	// ConfirmationRequired marks intents whose execution only stages a
	// pending action awaiting an explicit yes.
	ConfirmationRequired bool
	// Prompt is an optional progress message shown before execution.
	Prompt string
	// FollowUps are suggested next questions, in display order.
	FollowUps []string
}

// Context carries the two conversation flags the resolver needs. Keeping it
// to plain values (rather than the full session state) keeps the resolver
// free of side effects.
type Context struct {
	// AwaitingConfirmation is true when an unlock is staged and the next
	// message may be a yes/no answer.
	AwaitingConfirmation bool
	// DoorOptionCount is the number of numbered door choices currently
	// offered, or zero when none are pending.
	DoorOptionCount int
}
