package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/meeting-platform/core/internal/domain"
)

// MeetingRepository implements domain.MeetingRepository against SQLite,
// storing membership in a join table keyed by the meeting's internal row id.
type MeetingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMeetingRepository constructs a SQLite-backed MeetingRepository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{pool: pool, helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateMeeting inserts a meeting row and its initial participant rows
// within a single transaction.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now().UTC()
	}
	if meeting.UpdatedAt.IsZero() {
		meeting.UpdatedAt = meeting.CreatedAt
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO meetings (meeting_id, meeting_code, organizer_numeric_id, topic, state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			meeting.MeetingID, meeting.MeetingCode, meeting.OrganizerNumericID, meeting.Topic,
			string(meeting.State), meeting.CreatedAt.Format(time.RFC3339), meeting.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, participant := range meeting.Participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO meeting_participants (meeting_row_id, participant_numeric_id) VALUES (?, ?)`,
				rowID, participant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(r.mapper.MapError(err), ErrDuplicateRecord) {
			return domain.Meeting{}, domain.ErrAlreadyExists
		}
		return domain.Meeting{}, err
	}
	return meeting, nil
}

// GetMeeting returns the meeting identified by meetingID, with its
// participant roster loaded.
func (r *MeetingRepository) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	return r.loadMeeting(ctx, r.pool.DB(), meetingID)
}

func (r *MeetingRepository) loadMeeting(ctx context.Context, q queryer, meetingID string) (domain.Meeting, error) {
	var (
		meeting   domain.Meeting
		rowID     int64
		state     string
		createdAt string
		updatedAt string
	)
	row := q.QueryRowContext(ctx, `
		SELECT row_id, meeting_id, meeting_code, organizer_numeric_id, topic, state, created_at, updated_at
		FROM meetings WHERE meeting_id = ?`, meetingID)
	err := row.Scan(&rowID, &meeting.MeetingID, &meeting.MeetingCode, &meeting.OrganizerNumericID,
		&meeting.Topic, &state, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Meeting{}, domain.ErrNotFound
		}
		return domain.Meeting{}, err
	}
	meeting.State = domain.MeetingState(state)
	meeting.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	meeting.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	rows, err := q.QueryContext(ctx, `SELECT participant_numeric_id FROM meeting_participants WHERE meeting_row_id = ?`, rowID)
	if err != nil {
		return domain.Meeting{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var participant uint64
		if err := rows.Scan(&participant); err != nil {
			return domain.Meeting{}, err
		}
		meeting.Participants = append(meeting.Participants, participant)
	}
	return meeting, rows.Err()
}

// queryer is the subset of *sql.DB / *sql.Tx used by loadMeeting, letting it
// run against either a plain connection or an in-flight transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// AddParticipant inserts participantID into meetingID's roster.
func (r *MeetingRepository) AddParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	var updated domain.Meeting
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var rowID int64
		if err := tx.QueryRowContext(ctx, `SELECT row_id FROM meetings WHERE meeting_id = ?`, meetingID).Scan(&rowID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meeting_participants (meeting_row_id, participant_numeric_id) VALUES (?, ?)`,
			rowID, participantID); err != nil {
			if errors.Is(r.mapper.MapError(err), ErrDuplicateRecord) {
				return domain.ErrAlreadyExists
			}
			return err
		}
		var err error
		updated, err = r.loadMeeting(ctx, tx, meetingID)
		return err
	})
	if err != nil {
		return domain.Meeting{}, err
	}
	return updated, nil
}

// RemoveParticipant deletes participantID from meetingID's roster.
func (r *MeetingRepository) RemoveParticipant(ctx context.Context, meetingID string, participantID uint64) (domain.Meeting, error) {
	var updated domain.Meeting
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var rowID int64
		if err := tx.QueryRowContext(ctx, `SELECT row_id FROM meetings WHERE meeting_id = ?`, meetingID).Scan(&rowID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM meeting_participants WHERE meeting_row_id = ? AND participant_numeric_id = ?`,
			rowID, participantID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		updated, err = r.loadMeeting(ctx, tx, meetingID)
		return err
	})
	if err != nil {
		return domain.Meeting{}, err
	}
	return updated, nil
}

// UpdateState sets meetingID's lifecycle state and updated_at timestamp.
func (r *MeetingRepository) UpdateState(ctx context.Context, meetingID string, state domain.MeetingState, updatedAt time.Time) (domain.Meeting, error) {
	result, err := r.helper.Exec(ctx, `UPDATE meetings SET state = ?, updated_at = ? WHERE meeting_id = ?`,
		string(state), updatedAt.UTC().Format(time.RFC3339), meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Meeting{}, err
	}
	if affected == 0 {
		return domain.Meeting{}, domain.ErrNotFound
	}
	return r.GetMeeting(ctx, meetingID)
}
