package intent

// resolver.go turns a raw message plus the two conversation flags into a
// resolved Intent. Resolution order matters: phrase sets overlap ("door"
// appears in most unlock phrasings), so the specific triggers (confirmation
// replies, numeric selection, unlock, GUID lookup) run before the generic
// category keywords.

import "strings"

// affirmativeTokens are replies that mean "yes, proceed" while an unlock
// confirmation is pending.
var affirmativeTokens = []string{
	"yes", "y", "yeah", "yep", "yup", "sure",
	"ok", "okay", "confirm", "proceed", "go ahead", "do it",
}

// negativeTokens are replies that mean "no, cancel".
var negativeTokens = []string{
	"no", "n", "nope", "nah", "cancel", "stop", "abort",
	"nevermind", "never mind", "forget it",
}

// unlockTriggers signal an intent to unlock a door. Checked by substring so
// phrasings like "please unlock the lobby" match.
var unlockTriggers = []string{
	"unlock", "open door", "open the door", "open access point",
}

// eventTriggers signal a lookup of a single access event by its identifier.
var eventTriggers = []string{
	"event",
}

// categoryRule is one entry of the keyword table: the first rule whose
// phrase list matches the lowered message wins.
type categoryRule struct {
	phrases []string
	intent  Intent
}

// categoryRules is the ordered keyword table. Access-history phrases come
// first so "show my access logs" never falls into the generic door listing;
// the available-points rule precedes the door rule for the same reason.
var categoryRules = []categoryRule{
	{
		phrases: []string{"access history", "my history", "access log", "entry log", "access logs", "entry logs"},
		intent: Intent{
			Kind:   KindGetEntriesLastNDays,
			Params: Params{Days: 7},
			Prompt: "Retrieving your access history from the last 7 days.",
			FollowUps: []string{
				"Show only denied entries",
				"Show only granted entries",
				"What doors do I have access to?",
			},
		},
	},
	{
		phrases: []string{"available access points", "available doors", "available access", "which doors can i open", "doors available"},
		intent: Intent{
			Kind:   KindGetAvailableAccessPoints,
			Prompt: "Retrieving the access points currently available to you.",
			FollowUps: []string{
				"Unlock a door",
				"Show my access history",
				"Where did I enter today?",
			},
		},
	},
	{
		phrases: []string{"door", "doors", "access to", "which doors", "what doors", "access point"},
		intent: Intent{
			Kind:   KindGetAccessPoints,
			Prompt: "Retrieving your access control points.",
			FollowUps: []string{
				"Show my access history",
				"Where did I enter today?",
				"Check for denied access",
			},
		},
	},
	{
		phrases: []string{"today", "entered today", "access today", "where did i enter today"},
		intent: Intent{
			Kind:   KindGetEntriesToday,
			Prompt: "Retrieving access entries from today.",
			FollowUps: []string{
				"Show yesterday's entries",
				"Show last 7 days",
				"What doors do I have access to?",
			},
		},
	},
	{
		phrases: []string{"yesterday", "entered yesterday"},
		intent: Intent{
			Kind:   KindGetEntriesYesterday,
			Prompt: "Retrieving access entries from yesterday.",
			FollowUps: []string{
				"Show today's entries",
				"Show last 7 days",
				"Check for denied access",
			},
		},
	},
	{
		phrases: []string{"last 7 days", "last week", "past week", "last seven days"},
		intent: Intent{
			Kind:   KindGetEntriesLastNDays,
			Params: Params{Days: 7},
			Prompt: "Retrieving access entries from the last 7 days.",
			FollowUps: []string{
				"Show only denied entries",
				"Show only granted entries",
				"What doors do I have access to?",
			},
		},
	},
	{
		phrases: []string{"last 30 days", "last month", "past month"},
		intent: Intent{
			Kind:   KindGetEntriesLastNDays,
			Params: Params{Days: 30},
			Prompt: "Retrieving access entries from the last 30 days.",
			FollowUps: []string{
				"Show only denied entries",
				"Show only granted entries",
				"Filter by specific door",
			},
		},
	},
	{
		phrases: []string{"last entry", "last access", "most recent", "last time"},
		intent: Intent{
			Kind:   KindGetLastEntry,
			Prompt: "Retrieving your most recent access entry.",
			FollowUps: []string{
				"Show today's entries",
				"Show last 7 days",
				"What doors do I have access to?",
			},
		},
	},
	{
		phrases: []string{"denied", "rejected", "failed access", "couldn't enter"},
		intent: Intent{
			Kind:        KindGetDeniedEntries,
			UsesContext: true,
			Prompt:      "Checking for denied access attempts.",
			FollowUps: []string{
				"Show all entries",
				"Show granted entries only",
				"What doors do I have access to?",
			},
		},
	},
	{
		phrases: []string{"granted", "successful"},
		intent: Intent{
			Kind:        KindGetGrantedEntries,
			UsesContext: true,
			Prompt:      "Retrieving successful access entries.",
			FollowUps: []string{
				"Show denied entries",
				"Show today's entries",
				"Check last entry",
			},
		},
	},
	{
		phrases: []string{"my account", "my profile", "my info", "who am i"},
		intent: Intent{
			Kind: KindShowAccount,
			FollowUps: []string{
				"What doors do I have access to?",
				"Show my access history",
				"Check for denied access",
			},
		},
	},
	{
		phrases: []string{"help", "what can you do", "capabilities", "commands"},
		intent: Intent{
			Kind: KindShowHelp,
			FollowUps: []string{
				"What doors do I have access to?",
				"Show today's entries",
				"Show my account",
			},
		},
	},
	{
		phrases: []string{"reset", "clear chat", "start over", "clear context"},
		intent: Intent{
			Kind: KindReset,
			FollowUps: []string{
				"What doors do I have access to?",
				"Show today's entries",
				"Show my access history",
			},
		},
	},
}

// unsupportedFollowUps are the rephrasing suggestions attached to messages
// no rule matched.
var unsupportedFollowUps = []string{
	"What doors do I have access to?",
	"Show today's entries",
	"Show my access history",
}

// Resolve maps one user message to an Intent. Pure function: no side
// effects, no network calls.
func Resolve(message string, ctx Context) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))

	// Pending confirmation: an explicit yes or no settles the staged unlock.
	// Anything else falls through and is treated as a fresh request.
	if ctx.AwaitingConfirmation {
		if matchesToken(lower, affirmativeTokens) {
			return Intent{Kind: KindConfirmUnlock}
		}
		if matchesToken(lower, negativeTokens) {
			return Intent{Kind: KindCancelUnlock}
		}
	}

	// Pending numbered door choices: a bare integer picks one.
	if ctx.DoorOptionCount > 0 {
		if n, ok := ExtractBareInteger(lower); ok {
			return Intent{Kind: KindSelectDoorOption, Params: Params{Selection: n}}
		}
	}

	if containsAny(lower, unlockTriggers) {
		if id := ExtractAccessPointID(lower); id != "" {
			return Intent{
				Kind:                 KindUnlockByID,
				Params:               Params{AccessPointID: id},
				ConfirmationRequired: true,
			}
		}
		return Intent{
			Kind:                 KindUnlockByName,
			Params:               Params{DoorQuery: StripDoorStopWords(lower)},
			ConfirmationRequired: true,
		}
	}

	if containsAny(lower, eventTriggers) {
		if guid := ExtractGUID(message); guid != "" {
			return Intent{
				Kind:   KindGetEventByGUID,
				Params: Params{GUID: guid},
				Prompt: "Looking up the access event.",
			}
		}
	}

	for _, rule := range categoryRules {
		if containsAny(lower, rule.phrases) {
			return rule.intent
		}
	}

	return Intent{Kind: KindUnknown, FollowUps: unsupportedFollowUps}
}

// matchesToken reports whether the message is one of the tokens, or starts
// with one followed by a space ("yes please"). Substring matching would be
// wrong here: "nothing pending" must not read as "no".
func matchesToken(lower string, tokens []string) bool {
	for _, t := range tokens {
		if lower == t || strings.HasPrefix(lower, t+" ") || strings.HasPrefix(lower, t+",") {
			return true
		}
	}
	return false
}

// containsAny reports whether any of the phrases occurs in the message.
func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
