package alta

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Backend records arrive with inconsistent field naming across tenants and
// API versions (e.g. an access point ID may be under "id", "accessPointId",
// or "access_point_id"). All record types therefore retain the raw decoded
// object and resolve fields through a fixed alias priority list.

// idAliases is the priority-ordered list of field names an access point ID
// may appear under. Order matters: the first present alias wins.
var idAliases = []string{"id", "accessPointId", "access_point_id", "controlPointId", "uuid"}

// AccessEvent is a single logged access attempt.
type AccessEvent struct {
	// TimeMS is the event timestamp in epoch milliseconds. Valid only when
	// HasTime is true; events without a numeric time are excluded from all
	// date-range filtering.
	TimeMS  int64
	HasTime bool

	EventType       string // ACCESS_GRANTED, ACCESS_DENIED, HELD_OPEN, HELD_OPEN_ENDED, or other
	EventName       string
	AccessPointName string
	SiteName        string
	CardholderName  string
	GUID            string

	raw map[string]any
}

// UnmarshalJSON decodes an event from its raw backend representation,
// applying alias fallback for the loosely-named fields.
func (e *AccessEvent) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode access event: %w", err)
	}
	e.raw = m

	if ms, ok := numberField(m, "time"); ok {
		e.TimeMS = ms
		e.HasTime = true
	}
	e.EventType = stringField(m, "event_type", "eventType")
	e.EventName = stringField(m, "event_name", "eventName")
	e.AccessPointName = stringField(m, "access_point_name", "reader_name", "accessPointName")
	e.SiteName = stringField(m, "site_name", "siteName", "site")
	e.CardholderName = stringField(m, "cardholder_name", "cardholderName")
	e.GUID = stringField(m, "guid", "id", "uuid")
	return nil
}

// EventFromMap builds an AccessEvent from an already-decoded object.
// Used by tests and by single-event endpoint responses.
func EventFromMap(m map[string]any) AccessEvent {
	b, _ := json.Marshal(m)
	var e AccessEvent
	_ = json.Unmarshal(b, &e)
	return e
}

// AccessPoint is a controllable door or reader.
type AccessPoint struct {
	raw map[string]any
}

// UnmarshalJSON retains the raw backend object; all fields are resolved
// lazily through the accessor methods.
func (p *AccessPoint) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode access point: %w", err)
	}
	p.raw = m
	return nil
}

// PointFromMap builds an AccessPoint from an already-decoded object.
func PointFromMap(m map[string]any) AccessPoint {
	return AccessPoint{raw: m}
}

// ResolveID returns the access point's ID, trying each known alias in
// priority order. Records lacking an ID under every alias return an error
// naming the record's available fields, so a schema drift never turns into a
// silent unlock of the wrong door.
func (p AccessPoint) ResolveID() (string, error) {
	for _, alias := range idAliases {
		v, ok := p.raw[alias]
		if !ok {
			continue
		}
		switch id := v.(type) {
		case string:
			if id != "" {
				return id, nil
			}
		case float64:
			return strconv.FormatInt(int64(id), 10), nil
		case json.Number:
			return id.String(), nil
		}
	}
	return "", fmt.Errorf("access point record has no ID under any known alias %v; available fields: %s",
		idAliases, strings.Join(p.FieldNames(), ", "))
}

// Name returns the display name, or "" when absent under every alias.
func (p AccessPoint) Name() string {
	return stringField(p.raw, "name", "access_point_name", "accessPointName")
}

// SiteName returns the site name, or "" when absent.
func (p AccessPoint) SiteName() string {
	return stringField(p.raw, "site_name", "site", "siteName")
}

// Type returns the access point type, or "" when absent.
func (p AccessPoint) Type() string {
	return stringField(p.raw, "type")
}

// FieldNames returns the sorted field names present on the raw record.
func (p AccessPoint) FieldNames() []string {
	names := make([]string, 0, len(p.raw))
	for k := range p.raw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// User is the authenticated account returned by /me.
type User struct {
	raw map[string]any
}

func (u *User) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}
	u.raw = m
	return nil
}

// UserFromMap builds a User from an already-decoded object.
func UserFromMap(m map[string]any) User {
	return User{raw: m}
}

// Name returns the display name, falling back to "firstName lastName",
// or "" when neither is present.
func (u User) Name() string {
	if name := stringField(u.raw, "name"); name != "" {
		return name
	}
	full := strings.TrimSpace(stringField(u.raw, "firstName") + " " + stringField(u.raw, "lastName"))
	return full
}

// Email returns the account email, or "" when absent.
func (u User) Email() string {
	return stringField(u.raw, "email")
}

// ID returns the account ID, or "" when absent.
func (u User) ID() string {
	if v, ok := u.raw["id"]; ok {
		switch id := v.(type) {
		case string:
			return id
		case float64:
			return strconv.FormatInt(int64(id), 10)
		}
	}
	return ""
}

// Role returns the account role, or "" when absent under every alias.
func (u User) Role() string {
	return stringField(u.raw, "role", "userRole")
}

// stringField returns the first non-empty string value found under the given
// aliases, in order.
func stringField(m map[string]any, aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := m[alias]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// numberField returns the value under key as epoch milliseconds. Non-numeric
// values (strings, null, objects) report ok=false rather than an error.
func numberField(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
