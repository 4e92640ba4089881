package domain

import (
	"context"
	"time"
)

// UserRepository stores and retrieves User records. Implementations must
// enforce username uniqueness and assign a monotonic NumericID at creation.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	FindByUserName(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, userID string) (User, error)
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}

// SessionRepository stores and retrieves Session records, keyed by token.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// MeetingRepository stores and retrieves Meeting records, enforcing
// meeting_id / meeting_code uniqueness and at-most-once membership.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, meetingID string) (Meeting, error)
	AddParticipant(ctx context.Context, meetingID string, participantID uint64) (Meeting, error)
	RemoveParticipant(ctx context.Context, meetingID string, participantID uint64) (Meeting, error)
	UpdateState(ctx context.Context, meetingID string, state MeetingState, updatedAt time.Time) (Meeting, error)
}
