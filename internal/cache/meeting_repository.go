package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

type cachedMeeting struct {
	MeetingID          string   `json:"meeting_id"`
	MeetingCode        string   `json:"meeting_code"`
	OrganizerNumericID uint64   `json:"organizer_numeric_id"`
	Topic              string   `json:"topic"`
	State              string   `json:"state"`
	Participants       []uint64 `json:"participants"`
}

func meetingKey(meetingID string) string { return "meeting:info:" + meetingID }

func toCachedMeeting(m domain.Meeting) cachedMeeting {
	return cachedMeeting{
		MeetingID: m.MeetingID, MeetingCode: m.MeetingCode, OrganizerNumericID: m.OrganizerNumericID,
		Topic: m.Topic, State: string(m.State), Participants: m.Participants,
	}
}

func (c cachedMeeting) toDomain() domain.Meeting {
	return domain.Meeting{
		MeetingID: c.MeetingID, MeetingCode: c.MeetingCode, OrganizerNumericID: c.OrganizerNumericID,
		Topic: c.Topic, State: domain.MeetingState(c.State), Participants: c.Participants,
	}
}

// MeetingRepository wraps a domain.MeetingRepository with a Redis-backed
// cache. Any membership or state mutation invalidates the cached entry
// outright rather than patching it in place, since a meeting's roster
// changes far more often than it is read between writes.
type MeetingRepository struct {
	backing domain.MeetingRepository
	cache   Client
	ttl     time.Duration
	logger  *slog.Logger
}

// NewMeetingRepository constructs a cache-wrapped MeetingRepository.
func NewMeetingRepository(backing domain.MeetingRepository, cacheClient Client, ttl time.Duration, logger *slog.Logger) *MeetingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MeetingRepository{backing: backing, cache: cacheClient, ttl: ttl, logger: logger}
}

// CreateMeeting writes through and seeds the cache.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	created, err := r.backing.CreateMeeting(ctx, meeting)
	if err != nil {
		return domain.Meeting{}, err
	}
	r.put(ctx, created)
	return created, nil
}

// GetMeeting reads through the cache and falls back to the backing store on
// miss.
func (r *MeetingRepository) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, meetingKey(meetingID)); err == nil {
			var cm cachedMeeting
			if jsonErr := json.Unmarshal([]byte(raw), &cm); jsonErr == nil {
				return cm.toDomain(), nil
			}
		} else if !errors.Is(err, ErrMiss) {
			r.logger.WarnContext(ctx, "cache read failed", "error", err)
		}
	}

	meeting, err := r.backing.GetMeeting(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	r.put(ctx, meeting)
	return meeting, nil
}

// AddParticipant writes through and invalidates the cached roster.
func (r *MeetingRepository) AddParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	updated, err := r.backing.AddParticipant(ctx, meetingID, participantID)
	if err != nil {
		return domain.Meeting{}, err
	}
	r.invalidate(ctx, meetingID)
	return updated, nil
}

// RemoveParticipant writes through and invalidates the cached roster.
func (r *MeetingRepository) RemoveParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	updated, err := r.backing.RemoveParticipant(ctx, meetingID, participantID)
	if err != nil {
		return domain.Meeting{}, err
	}
	r.invalidate(ctx, meetingID)
	return updated, nil
}

// UpdateState writes through and invalidates the cached entry.
func (r *MeetingRepository) UpdateState(ctx context.Context, meetingID string, state domain.MeetingState, updatedAt time.Time) (domain.Meeting, error) {
	updated, err := r.backing.UpdateState(ctx, meetingID, state, updatedAt)
	if err != nil {
		return domain.Meeting{}, err
	}
	r.invalidate(ctx, meetingID)
	return updated, nil
}

// invalidate evicts the cached entry for meetingID rather than refreshing
// it: the participants list is stored alongside the rest of the meeting
// record, so two membership mutations racing on the same meeting could
// each overwrite the cache with their own stale snapshot after their
// primary commit, and whichever SetEx lands last wins even if it is the
// older one. The next GetMeeting repopulates the cache from the backing
// store, which reflects both writes.
func (r *MeetingRepository) invalidate(ctx context.Context, meetingID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, meetingKey(meetingID)); err != nil {
		r.logger.WarnContext(ctx, "cache evict failed", "error", err)
	}
}

func (r *MeetingRepository) put(ctx context.Context, meeting domain.Meeting) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(toCachedMeeting(meeting))
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal cached meeting", "error", err)
		return
	}
	if err := r.cache.SetEx(ctx, meetingKey(meeting.MeetingID), string(payload), r.ttl); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}
