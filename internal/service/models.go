package service

import "time"

// RegisterParams captures the caller-provided fields for Register.
type RegisterParams struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
}

// LoginParams captures the caller-provided fields for Login.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful Login.
type LoginResult struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// CreateMeetingParams captures the caller-provided fields for CreateMeeting.
type CreateMeetingParams struct {
	OrganizerNumericID uint64
	Topic              string
}

// MeetingConfig holds the tunables MeetingManager needs beyond what the
// caller supplies per call: the roster cap, the generated meeting code's
// length, and which automatic-end rules apply to Leave.
type MeetingConfig struct {
	MaxParticipants        int
	CodeLength             int
	EndWhenOrganizerLeaves bool
	EndWhenEmpty           bool
}

// DefaultMeetingConfig returns the configuration cmd/meetingd wires by
// default: a 100-participant roster cap, a 9-character meeting code, and
// both automatic-end rules enabled.
func DefaultMeetingConfig() MeetingConfig {
	return MeetingConfig{
		MaxParticipants:        100,
		CodeLength:             9,
		EndWhenOrganizerLeaves: true,
		EndWhenEmpty:           true,
	}
}
