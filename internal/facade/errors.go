package facade

import (
	"errors"

	"github.com/meeting-platform/core/internal/domain"
	"github.com/meeting-platform/core/internal/service"
	"github.com/meeting-platform/core/internal/status"
)

// mapServiceError translates domain/service sentinel errors into the
// status.Error taxonomy the façade returns to every caller, regardless of
// transport.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*status.Error); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.NotFound("%v", err)
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.AlreadyExists("%v", err)
	case errors.Is(err, service.ErrInvalidArgument):
		return status.InvalidArgument("%v", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return status.Unauthenticated("%v", err)
	case errors.Is(err, service.ErrSessionExpired):
		return status.Unauthenticated("%v", err)
	case errors.Is(err, service.ErrMeetingEnded):
		return status.InvalidArgument("%v", err)
	case errors.Is(err, service.ErrMeetingAlreadyEnded):
		return status.InvalidArgument("%v", err)
	case errors.Is(err, service.ErrMeetingFull):
		return status.Unavailable("%v", err)
	case errors.Is(err, service.ErrNotParticipant):
		return status.NotFound("%v", err)
	}
	return status.Internal("%v", err)
}
