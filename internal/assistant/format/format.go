// Package format renders executor results as Markdown replies.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/executor"
)

// maxEntriesShown caps the rendered entry list; the count line still reports
// the full total.
const maxEntriesShown = 20

// Render formats one execution result as a Markdown message.
func Render(res *executor.Result) string {
	switch res.Type {
	case executor.ResultEntries:
		return Entries(res.Entries, res.Label)
	case executor.ResultAccessPoints:
		return AccessPoints(res.Points, res.AvailableOnly)
	case executor.ResultEvent:
		return Event(res.Event)
	case executor.ResultAccount:
		return Account(res.User)
	case executor.ResultHelp:
		return HelpText()
	case executor.ResultConfirmPrompt:
		return ConfirmPrompt(res.Door)
	case executor.ResultDoorOptions:
		return DoorOptions(res.Points)
	case executor.ResultUnlockDone:
		return fmt.Sprintf("**%s** is unlocked.", res.Door)
	case executor.ResultUnlockCanceled:
		return "Unlock cancelled. The door stays locked."
	case executor.ResultResetDone:
		return "Conversation context cleared. Ask me a question to get started."
	default:
		return UnsupportedText()
	}
}

// Entries renders an event list, newest first, capped at 20 rows.
func Entries(entries []alta.AccessEvent, label string) string {
	if len(entries) == 0 {
		if label != "" {
			return fmt.Sprintf("No access events were found for %s.", label)
		}
		return "No access events were found in the selected period."
	}

	sorted := executor.SortByTimeDesc(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "**Access Events: %d**\n\n", len(entries))

	shown := sorted
	if len(shown) > maxEntriesShown {
		shown = shown[:maxEntriesShown]
	}
	for _, e := range shown {
		door := e.AccessPointName
		if door == "" {
			door = "Unknown Door"
		}
		site := e.SiteName
		if site == "" {
			site = "Unknown Site"
		}

		fmt.Fprintf(&b, "**%s** - %s\n", statusLabel(e.EventType), door)
		fmt.Fprintf(&b, "   Site: %s\n", site)
		fmt.Fprintf(&b, "   Time: %s\n", timeLabel(e))
		if e.CardholderName != "" {
			fmt.Fprintf(&b, "   User: %s\n", e.CardholderName)
		}
		b.WriteString("\n")
	}

	if len(sorted) > maxEntriesShown {
		fmt.Fprintf(&b, "\nShowing %d of %d entries", maxEntriesShown, len(sorted))
	}
	return b.String()
}

// AccessPoints renders the door listing.
func AccessPoints(points []alta.AccessPoint, availableOnly bool) string {
	if len(points) == 0 {
		if availableOnly {
			return "No access points are currently available to you."
		}
		return "No access control points found in the system."
	}

	var b strings.Builder
	if availableOnly {
		fmt.Fprintf(&b, "**Available Access Points: %d**\n\n", len(points))
	} else {
		fmt.Fprintf(&b, "**Access Control Points (Doors): %d**\n\n", len(points))
	}

	for _, p := range points {
		name := p.Name()
		if name == "" {
			name = "Unknown Point"
		}
		site := p.SiteName()
		if site == "" {
			site = "Unknown Site"
		}
		pointType := p.Type()
		if pointType == "" {
			pointType = "Access Point"
		}

		fmt.Fprintf(&b, "**%s**\n", name)
		fmt.Fprintf(&b, "   Site: %s\n", site)
		fmt.Fprintf(&b, "   Type: %s\n\n", pointType)
	}
	return b.String()
}

// Event renders a single access event.
func Event(e *alta.AccessEvent) string {
	if e == nil {
		return "No access events were found."
	}

	door := e.AccessPointName
	if door == "" {
		door = "Unknown Door"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** - %s\n", statusLabel(e.EventType), door)
	if e.SiteName != "" {
		fmt.Fprintf(&b, "   Site: %s\n", e.SiteName)
	}
	fmt.Fprintf(&b, "   Time: %s\n", timeLabel(*e))
	if e.CardholderName != "" {
		fmt.Fprintf(&b, "   User: %s\n", e.CardholderName)
	}
	if e.GUID != "" {
		fmt.Fprintf(&b, "   Event ID: %s\n", e.GUID)
	}
	return b.String()
}

// Account renders the authenticated account details.
func Account(u *alta.User) string {
	var b strings.Builder
	b.WriteString("**Your Account:**\n\n")

	name := "Not available"
	email := "Not available"
	role := "User"
	var id string
	if u != nil {
		if n := u.Name(); n != "" {
			name = n
		}
		if e := u.Email(); e != "" {
			email = e
		}
		if r := u.Role(); r != "" {
			role = r
		}
		id = u.ID()
	}

	fmt.Fprintf(&b, "**Name:** %s\n", name)
	fmt.Fprintf(&b, "**Email:** %s\n", email)
	if id != "" {
		fmt.Fprintf(&b, "**User ID:** %s\n", id)
	}
	fmt.Fprintf(&b, "**Role:** %s\n", titleCase(role))
	return b.String()
}

// ConfirmPrompt asks for the explicit yes before an unlock fires.
func ConfirmPrompt(door string) string {
	return fmt.Sprintf("You are about to unlock **%s**. Reply **yes** to unlock it or **no** to cancel.", door)
}

// DoorOptions renders the numbered door choice list.
func DoorOptions(points []alta.AccessPoint) string {
	var b strings.Builder
	b.WriteString("Several doors match. Reply with a number to choose:\n\n")
	for i, p := range points {
		name := p.Name()
		if name == "" {
			name = "Unknown Point"
		}
		if site := p.SiteName(); site != "" {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, name, site)
		} else {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, name)
		}
	}
	return b.String()
}

// HelpText lists the supported phrasings.
func HelpText() string {
	return `**Available Commands:**

**Door Access:**
- "What doors do I have access to?"
- "Show available access points"
- "Unlock the lobby door" / "Unlock door 42"

**Entry History:**
- "Where did I enter today?"
- "Show yesterday's entries"
- "Show last 7 days"
- "What was my last entry?"
- "Show my access history"

**Access Status:**
- "Show denied access attempts"
- "Show granted entries"

**Account:**
- "Show my account"
- "Who am I?"

Ask me a question to get started.`
}

// UnsupportedText is the fallback when no intent matched.
func UnsupportedText() string {
	return `Request not recognized.

Available functions:
- Access control points and door unlocking
- Access entry history
- Denied/granted access filtering
- Account information

Please rephrase your request.`
}

// Greeting is the message sent when the assistant joins a room. Name may be
// empty when /me has not resolved.
func Greeting(name string) string {
	if name != "" {
		return fmt.Sprintf("Hello %s. I can answer questions about your doors and access history. Say **help** to see what I can do.", name)
	}
	return "Hello. I can answer questions about your doors and access history. Say **help** to see what I can do."
}

// Error renders an execution failure.
func Error(execErr *executor.Error) string {
	msg := "Unknown error occurred"
	if execErr != nil && execErr.Message != "" {
		msg = execErr.Message
	}
	return fmt.Sprintf("**Error:** %s\n\nPlease try again or contact support if the issue persists.", msg)
}

// FollowUps renders the suggested next questions, or "" when there are none.
func FollowUps(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("**Quick actions:**\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}

// statusLabel maps an event type to its display label; unknown types pass
// through unchanged.
func statusLabel(eventType string) string {
	switch eventType {
	case "ACCESS_GRANTED":
		return "Granted"
	case "ACCESS_DENIED":
		return "Denied"
	case "HELD_OPEN":
		return "Held Open"
	case "HELD_OPEN_ENDED":
		return "Held Open Ended"
	case "":
		return "UNKNOWN"
	default:
		return eventType
	}
}

// timeLabel renders an event timestamp in UTC, or "Unknown time" when the
// record has no usable time.
func timeLabel(e alta.AccessEvent) string {
	if !e.HasTime || e.TimeMS <= 0 {
		return "Unknown time"
	}
	return time.UnixMilli(e.TimeMS).UTC().Format("2006-01-02 15:04:05")
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
