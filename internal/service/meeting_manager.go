package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// MeetingManager owns meeting lifecycle operations: creation, join, leave,
// and end, delegating storage and uniqueness enforcement to the repository.
type MeetingManager struct {
	meetings domain.MeetingRepository
	cfg      MeetingConfig
	now      func() time.Time
	logger   *slog.Logger
}

// NewMeetingManager constructs a MeetingManager backed by meetings, using
// cfg's roster cap, code length, and Leave auto-end rules.
func NewMeetingManager(meetings domain.MeetingRepository, cfg MeetingConfig, logger *slog.Logger) *MeetingManager {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultMeetingConfig().CodeLength
	}
	if cfg.MaxParticipants <= 0 {
		cfg.MaxParticipants = DefaultMeetingConfig().MaxParticipants
	}
	return &MeetingManager{meetings: meetings, cfg: cfg, now: time.Now, logger: defaultLogger(logger)}
}

// Create allocates a fresh meeting id and a collision-checked meeting code,
// and persists the meeting in MeetingScheduled state with its organizer as
// the sole initial participant.
func (m *MeetingManager) Create(ctx context.Context, params CreateMeetingParams) (domain.Meeting, error) {
	logger := serviceLogger(ctx, m.logger, "MeetingManager", "Create", "organizer_id", params.OrganizerNumericID)

	if params.OrganizerNumericID == 0 {
		return domain.Meeting{}, fmt.Errorf("%w: organizer is required", ErrInvalidArgument)
	}
	topic := strings.TrimSpace(params.Topic)
	if topic == "" {
		return domain.Meeting{}, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}

	now := m.now()
	idSuffix, err := generateToken(16)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate meeting id", "error", err)
		return domain.Meeting{}, err
	}
	code, err := generateToken(m.cfg.CodeLength)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate meeting code", "error", err)
		return domain.Meeting{}, err
	}

	meeting := domain.Meeting{
		MeetingID:          "meeting_-" + idSuffix,
		MeetingCode:        code,
		OrganizerNumericID: params.OrganizerNumericID,
		Topic:              topic,
		State:              domain.MeetingScheduled,
		CreatedAt:          now,
		UpdatedAt:          now,
		Participants:       []uint64{params.OrganizerNumericID},
	}

	created, err := m.meetings.CreateMeeting(ctx, meeting)
	if err != nil {
		// A meeting_code collision is an internal condition, not a retryable
		// client error: the caller supplied no code, so there is nothing for
		// them to change and retry.
		logger.ErrorContext(ctx, "failed to persist meeting", "error", err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// %v, not %w: the façade then maps the collision to Internal.
			return domain.Meeting{}, fmt.Errorf("meeting id or code collision: %v", err)
		}
		return domain.Meeting{}, err
	}

	logger.InfoContext(ctx, "meeting created", "meeting_id", created.MeetingID, "meeting_code", created.MeetingCode)
	return created, nil
}

// Join adds participantID to meetingID, rejecting meetings that have
// already ended and callers already on the roster.
func (m *MeetingManager) Join(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	logger := serviceLogger(ctx, m.logger, "MeetingManager", "Join", "meeting_id", meetingID, "participant_id", participantID)

	meeting, err := m.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if meeting.State == domain.MeetingEnded {
		return domain.Meeting{}, ErrMeetingEnded
	}
	if meeting.HasParticipant(participantID) {
		return domain.Meeting{}, domain.ErrAlreadyExists
	}
	if len(meeting.Participants) >= m.cfg.MaxParticipants {
		return domain.Meeting{}, ErrMeetingFull
	}

	updated, err := m.meetings.AddParticipant(ctx, meetingID, participantID)
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			logger.ErrorContext(ctx, "failed to add participant", "error", err)
		}
		return domain.Meeting{}, err
	}

	if updated.State == domain.MeetingScheduled {
		updated, err = m.meetings.UpdateState(ctx, meetingID, domain.MeetingRunning, m.now())
		if err != nil {
			logger.ErrorContext(ctx, "failed to transition meeting to running", "error", err)
			return domain.Meeting{}, err
		}
	}

	logger.InfoContext(ctx, "participant joined")
	return updated, nil
}

// Leave removes participantID from meetingID. Unlike the reference
// implementation's capacity-gated variant, Leave always succeeds for a
// present participant regardless of any fullness check: removing a member
// can never make a meeting more full. If the leaver was the organizer and
// EndWhenOrganizerLeaves is set, or the roster is now empty and
// EndWhenEmpty is set, the meeting transitions to Ended as part of the
// same call.
func (m *MeetingManager) Leave(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	logger := serviceLogger(ctx, m.logger, "MeetingManager", "Leave", "meeting_id", meetingID, "participant_id", participantID)

	updated, err := m.meetings.RemoveParticipant(ctx, meetingID, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Meeting{}, ErrNotParticipant
		}
		logger.ErrorContext(ctx, "failed to remove participant", "error", err)
		return domain.Meeting{}, err
	}

	organizerLeft := participantID == updated.OrganizerNumericID
	shouldEnd := updated.State != domain.MeetingEnded &&
		((m.cfg.EndWhenOrganizerLeaves && organizerLeft) ||
			(m.cfg.EndWhenEmpty && len(updated.Participants) == 0))
	if shouldEnd {
		ended, endErr := m.meetings.UpdateState(ctx, meetingID, domain.MeetingEnded, m.now())
		if endErr != nil {
			logger.ErrorContext(ctx, "failed to auto-end meeting on leave", "error", endErr)
			return domain.Meeting{}, endErr
		}
		updated = ended
		logger.InfoContext(ctx, "meeting auto-ended on leave", "organizer_left", organizerLeft)
	}

	logger.InfoContext(ctx, "participant left")
	return updated, nil
}

// End transitions meetingID to MeetingEnded, rejecting a meeting that has
// already ended.
func (m *MeetingManager) End(ctx context.Context, meetingID string) (domain.Meeting, error) {
	logger := serviceLogger(ctx, m.logger, "MeetingManager", "End", "meeting_id", meetingID)

	meeting, err := m.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if meeting.State == domain.MeetingEnded {
		return domain.Meeting{}, ErrMeetingAlreadyEnded
	}

	updated, err := m.meetings.UpdateState(ctx, meetingID, domain.MeetingEnded, m.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to end meeting", "error", err)
		return domain.Meeting{}, err
	}

	logger.InfoContext(ctx, "meeting ended")
	return updated, nil
}

// Get returns the meeting identified by meetingID.
func (m *MeetingManager) Get(ctx context.Context, meetingID string) (domain.Meeting, error) {
	return m.meetings.GetMeeting(ctx, meetingID)
}
