package memory

import (
	"context"
	"sync"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// MeetingRepository is an in-memory domain.MeetingRepository. It owns
// meeting_id/meeting_code uniqueness and at-most-once membership; lifecycle
// rules (who may transition a meeting and when) live in the meeting manager,
// not here, mirroring the reference MeetingManager's direct map access under
// a single mutex.
type MeetingRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.Meeting
	codeToID   map[string]string
}

// NewMeetingRepository constructs an empty MeetingRepository.
func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{
		byID:     make(map[string]domain.Meeting),
		codeToID: make(map[string]string),
	}
}

// CreateMeeting stores a new meeting, enforcing meeting_id and
// meeting_code uniqueness.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[meeting.MeetingID]; exists {
		return domain.Meeting{}, domain.ErrAlreadyExists
	}
	if _, exists := r.codeToID[meeting.MeetingCode]; exists {
		return domain.Meeting{}, domain.ErrAlreadyExists
	}

	stored := meeting.Clone()
	r.byID[stored.MeetingID] = stored
	r.codeToID[stored.MeetingCode] = stored.MeetingID
	return stored.Clone(), nil
}

// GetMeeting returns a copy of the stored meeting.
func (r *MeetingRepository) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meeting, ok := r.byID[meetingID]
	if !ok {
		return domain.Meeting{}, domain.ErrNotFound
	}
	return meeting.Clone(), nil
}

// AddParticipant appends participantID to the meeting's roster, rejecting
// duplicates.
func (r *MeetingRepository) AddParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.byID[meetingID]
	if !ok {
		return domain.Meeting{}, domain.ErrNotFound
	}
	if meeting.HasParticipant(participantID) {
		return domain.Meeting{}, domain.ErrAlreadyExists
	}
	meeting.Participants = append(meeting.Participants, participantID)
	r.byID[meetingID] = meeting
	return meeting.Clone(), nil
}

// RemoveParticipant removes participantID from the meeting's roster.
func (r *MeetingRepository) RemoveParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.byID[meetingID]
	if !ok {
		return domain.Meeting{}, domain.ErrNotFound
	}
	idx := -1
	for i, p := range meeting.Participants {
		if p == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Meeting{}, domain.ErrNotFound
	}
	meeting.Participants = append(meeting.Participants[:idx], meeting.Participants[idx+1:]...)
	r.byID[meetingID] = meeting
	return meeting.Clone(), nil
}

// UpdateState transitions the meeting to state and stamps updatedAt.
func (r *MeetingRepository) UpdateState(ctx context.Context, meetingID string, state domain.MeetingState, updatedAt time.Time) (domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.byID[meetingID]
	if !ok {
		return domain.Meeting{}, domain.ErrNotFound
	}
	meeting.State = state
	meeting.UpdatedAt = updatedAt
	r.byID[meetingID] = meeting
	return meeting.Clone(), nil
}
