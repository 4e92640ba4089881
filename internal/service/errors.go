package service

import "errors"

var (
	// ErrInvalidArgument is wrapped with a field-specific message by callers that
	// validate request parameters before touching a repository.
	ErrInvalidArgument = errors.New("service: invalid argument")
	// ErrInvalidCredentials is returned when a login attempt fails to match a stored hash.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrSessionExpired is returned when a session token's expiry has passed.
	ErrSessionExpired = errors.New("service: session expired")
	// ErrMeetingFull is returned when Join would push a meeting's roster past
	// its configured MaxParticipants.
	ErrMeetingFull = errors.New("service: meeting full")
	// ErrMeetingEnded is returned when Join targets a meeting that has already ended.
	ErrMeetingEnded = errors.New("service: meeting ended")
	// ErrMeetingAlreadyEnded is returned when End targets a meeting that has already ended.
	ErrMeetingAlreadyEnded = errors.New("service: meeting already ended")
	// ErrNotParticipant is returned when Leave targets a meeting the caller never joined.
	ErrNotParticipant = errors.New("service: not a participant")
)

// ErrorKind maps sentinel errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrMeetingFull):
		return "meeting_full"
	case errors.Is(err, ErrMeetingEnded):
		return "meeting_ended"
	case errors.Is(err, ErrMeetingAlreadyEnded):
		return "meeting_already_ended"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	}
	return "unexpected"
}
