package domain

import (
	"testing"
	"time"
)

func TestSession_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	future := Session{ExpiresAt: now.Add(time.Minute)}
	if future.Expired(now) {
		t.Fatalf("expected a future expiry to not be expired")
	}

	past := Session{ExpiresAt: now.Add(-time.Minute)}
	if !past.Expired(now) {
		t.Fatalf("expected a past expiry to be expired")
	}

	boundary := Session{ExpiresAt: now}
	if !boundary.Expired(now) {
		t.Fatalf("expected a session expiring exactly at reference time to be expired")
	}
}

func TestMeeting_HasParticipant(t *testing.T) {
	t.Parallel()

	m := Meeting{Participants: []uint64{1, 2, 3}}
	if !m.HasParticipant(2) {
		t.Fatalf("expected 2 to be a participant")
	}
	if m.HasParticipant(99) {
		t.Fatalf("expected 99 to not be a participant")
	}
}

func TestMeeting_Clone_IsIndependentOfOriginal(t *testing.T) {
	t.Parallel()

	original := Meeting{Participants: []uint64{1, 2}}
	clone := original.Clone()

	clone.Participants[0] = 99
	if original.Participants[0] == 99 {
		t.Fatalf("expected Clone to deep-copy Participants")
	}

	clone.Participants = append(clone.Participants, 3)
	if len(original.Participants) != 2 {
		t.Fatalf("expected appending to the clone to not affect the original")
	}
}
