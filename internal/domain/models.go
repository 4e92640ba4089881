// Package domain holds the entities and repository contracts shared by the
// application's managers, caches, and durable store bindings.
package domain

import "time"

// MeetingState enumerates the lifecycle states a Meeting can be in.
type MeetingState string

const (
	MeetingScheduled MeetingState = "SCHEDULED"
	MeetingRunning   MeetingState = "RUNNING"
	MeetingEnded     MeetingState = "ENDED"
)

// User is an account that can authenticate and organize meetings.
type User struct {
	ID           string
	NumericID    uint64
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Session binds a bearer token to a user until an expiry.
type Session struct {
	Token         string
	UserNumericID uint64
	UserID        string
	ExpiresAt     time.Time
}

// Expired reports whether the session is no longer valid at reference time.
func (s Session) Expired(reference time.Time) bool {
	return !s.ExpiresAt.After(reference)
}

// Meeting is a named, stateful multi-party resource.
type Meeting struct {
	MeetingID          string
	MeetingCode        string
	OrganizerNumericID uint64
	Topic              string
	State              MeetingState
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Participants       []uint64
}

// HasParticipant reports whether id is already a member of the meeting.
func (m Meeting) HasParticipant(id uint64) bool {
	for _, p := range m.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe for callers to mutate independently of the
// repository's stored record.
func (m Meeting) Clone() Meeting {
	clone := m
	clone.Participants = append([]uint64(nil), m.Participants...)
	return clone
}

// Node describes a live server endpoint registered with the coordination
// service, identified by (Host, Port, Region).
type Node struct {
	Host   string
	Port   int
	Region string
	Weight int
	Meta   map[string]string
}

// DefaultRegion is used whenever a node or lookup omits an explicit region.
const DefaultRegion = "default"
