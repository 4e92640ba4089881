// Package facade exposes the meeting platform's operations as a single
// request/response surface, independent of any particular transport.
// Each method offloads its work onto the worker pool and translates
// manager-level errors into status.Error codes.
package facade

import (
	"context"
	"log/slog"
	"net"

	"github.com/meeting-platform/core/internal/domain"
	"github.com/meeting-platform/core/internal/geo"
	"github.com/meeting-platform/core/internal/lb"
	"github.com/meeting-platform/core/internal/pool"
	"github.com/meeting-platform/core/internal/service"
	"github.com/meeting-platform/core/internal/status"
)

// GeoResolver resolves a client IP to a geographic location. *geo.Lookup
// satisfies this; tests substitute a fake so they don't need an MMDB file.
type GeoResolver interface {
	Resolve(ip net.IP) (geo.Location, error)
}

// Facade is the application's single entry point, independent of transport.
type Facade struct {
	pool     *pool.Pool
	sessions *service.SessionManager
	users    *service.UserManager
	meetings *service.MeetingManager
	balancer *lb.Balancer
	geo      GeoResolver
	logger   *slog.Logger
}

// New constructs a Facade wiring the given managers and pool. geoResolver
// may be nil, in which case JoinMeeting never derives a region from the
// caller's IP and relies on the balancer's default-region fallback.
func New(p *pool.Pool, sessions *service.SessionManager, users *service.UserManager, meetings *service.MeetingManager, balancer *lb.Balancer, geoResolver GeoResolver, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{pool: p, sessions: sessions, users: users, meetings: meetings, balancer: balancer, geo: geoResolver, logger: logger}
}

// RegisterResult is returned by Register.
type RegisterResult struct {
	UserID   string
	Username string
}

// Register creates a new account.
func (f *Facade) Register(ctx context.Context, params service.RegisterParams) (RegisterResult, error) {
	future, err := pool.Submit(f.pool, func() (RegisterResult, error) {
		user, err := f.users.Register(ctx, params)
		if err != nil {
			return RegisterResult{}, mapServiceError(err)
		}
		return RegisterResult{UserID: user.ID, Username: user.Username}, nil
	})
	if err != nil {
		return RegisterResult{}, status.Unavailable("submit register: %v", err)
	}
	return future.Get()
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token     string
	UserID    string
	ExpiresAt int64
}

// Login authenticates a user and issues a session token.
func (f *Facade) Login(ctx context.Context, params service.LoginParams) (LoginResult, error) {
	future, err := pool.Submit(f.pool, func() (LoginResult, error) {
		user, err := f.users.Authenticate(ctx, params)
		if err != nil {
			return LoginResult{}, mapServiceError(err)
		}
		session, err := f.sessions.Issue(ctx, user.ID, user.NumericID)
		if err != nil {
			return LoginResult{}, mapServiceError(err)
		}
		return LoginResult{Token: session.Token, UserID: user.ID, ExpiresAt: session.ExpiresAt.Unix()}, nil
	})
	if err != nil {
		return LoginResult{}, status.Unavailable("submit login: %v", err)
	}
	return future.Get()
}

// Logout revokes a session token.
func (f *Facade) Logout(ctx context.Context, token string) error {
	future, err := pool.Submit(f.pool, func() (struct{}, error) {
		return struct{}{}, mapServiceError(f.sessions.Revoke(ctx, token))
	})
	if err != nil {
		return status.Unavailable("submit logout: %v", err)
	}
	_, err = future.Get()
	return err
}

// GetProfile resolves a session token to its owning user.
func (f *Facade) GetProfile(ctx context.Context, token string) (domain.User, error) {
	future, err := pool.Submit(f.pool, func() (domain.User, error) {
		session, err := f.sessions.Validate(ctx, token)
		if err != nil {
			return domain.User{}, mapServiceError(err)
		}
		user, err := f.users.Get(ctx, session.UserID)
		if err != nil {
			return domain.User{}, mapServiceError(err)
		}
		return user, nil
	})
	if err != nil {
		return domain.User{}, status.Unavailable("submit get profile: %v", err)
	}
	return future.Get()
}

// CreateMeetingResult is returned by CreateMeeting.
type CreateMeetingResult struct {
	Meeting domain.Meeting
}

// CreateMeeting authenticates the caller and creates a new meeting.
func (f *Facade) CreateMeeting(ctx context.Context, token, topic string) (CreateMeetingResult, error) {
	future, err := pool.Submit(f.pool, func() (CreateMeetingResult, error) {
		session, err := f.sessions.Validate(ctx, token)
		if err != nil {
			return CreateMeetingResult{}, mapServiceError(err)
		}
		meeting, err := f.meetings.Create(ctx, service.CreateMeetingParams{
			OrganizerNumericID: session.UserNumericID,
			Topic:              topic,
		})
		if err != nil {
			return CreateMeetingResult{}, mapServiceError(err)
		}
		return CreateMeetingResult{Meeting: meeting}, nil
	})
	if err != nil {
		return CreateMeetingResult{}, status.Unavailable("submit create meeting: %v", err)
	}
	return future.Get()
}

// JoinMeetingResult is returned by JoinMeeting, including an endpoint hint
// from the load balancer for the caller to connect media to.
type JoinMeetingResult struct {
	Meeting  domain.Meeting
	Endpoint domain.Node
}

// JoinMeeting authenticates the caller, joins them to a meeting, and
// attaches a load-balanced endpoint hint chosen for clientIP's region.
// clientIP is the peer address the (out-of-scope) transport layer extracted
// from the inbound connection; a blank or unresolvable address falls back
// to the balancer's default region.
func (f *Facade) JoinMeeting(ctx context.Context, token, meetingID, clientIP string) (JoinMeetingResult, error) {
	future, err := pool.Submit(f.pool, func() (JoinMeetingResult, error) {
		session, err := f.sessions.Validate(ctx, token)
		if err != nil {
			return JoinMeetingResult{}, mapServiceError(err)
		}
		meeting, err := f.meetings.Join(ctx, meetingID, session.UserNumericID)
		if err != nil {
			return JoinMeetingResult{}, mapServiceError(err)
		}

		result := JoinMeetingResult{Meeting: meeting}
		if f.balancer != nil {
			region := f.resolveRegion(ctx, clientIP)
			if node, balErr := f.balancer.Select(region); balErr == nil {
				result.Endpoint = node
			}
		}
		return result, nil
	})
	if err != nil {
		return JoinMeetingResult{}, status.Unavailable("submit join meeting: %v", err)
	}
	return future.Get()
}

// resolveRegion turns a client IP into a region label via the geo
// resolver. Any failure to resolve — no resolver configured, an
// unparseable address, a private/local address, or a resolver error —
// yields "", which the balancer treats as "default region"; geo hints are
// best effort, the same swallow-and-log posture as a cache miss elsewhere
// in this repo, so InvalidArgument/Unavailable outcomes from the resolver
// are logged rather than propagated to the caller.
func (f *Facade) resolveRegion(ctx context.Context, clientIP string) string {
	if f.geo == nil || clientIP == "" {
		return ""
	}
	ip := net.ParseIP(clientIP)
	if ip == nil {
		f.logger.WarnContext(ctx, "unparseable client ip for geo lookup", "ip", clientIP)
		return ""
	}
	loc, err := f.geo.Resolve(ip)
	if err != nil {
		f.logger.WarnContext(ctx, "geo lookup failed", "ip", clientIP, "error", err)
		return ""
	}
	if loc.IsPrivate {
		return ""
	}
	return loc.Region
}

// LeaveMeeting authenticates the caller and removes them from a meeting.
func (f *Facade) LeaveMeeting(ctx context.Context, token, meetingID string) (domain.Meeting, error) {
	future, err := pool.Submit(f.pool, func() (domain.Meeting, error) {
		session, err := f.sessions.Validate(ctx, token)
		if err != nil {
			return domain.Meeting{}, mapServiceError(err)
		}
		return wrapMeeting(f.meetings.Leave(ctx, meetingID, session.UserNumericID))
	})
	if err != nil {
		return domain.Meeting{}, status.Unavailable("submit leave meeting: %v", err)
	}
	return future.Get()
}

// EndMeeting authenticates the caller and ends a meeting they organize.
func (f *Facade) EndMeeting(ctx context.Context, token, meetingID string) (domain.Meeting, error) {
	future, err := pool.Submit(f.pool, func() (domain.Meeting, error) {
		session, err := f.sessions.Validate(ctx, token)
		if err != nil {
			return domain.Meeting{}, mapServiceError(err)
		}
		meeting, err := f.meetings.Get(ctx, meetingID)
		if err != nil {
			return domain.Meeting{}, mapServiceError(err)
		}
		if meeting.OrganizerNumericID != session.UserNumericID {
			return domain.Meeting{}, status.Unauthenticated("only the organizer may end this meeting")
		}
		return wrapMeeting(f.meetings.End(ctx, meetingID))
	})
	if err != nil {
		return domain.Meeting{}, status.Unavailable("submit end meeting: %v", err)
	}
	return future.Get()
}

// GetMeeting returns a meeting's current state.
func (f *Facade) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	future, err := pool.Submit(f.pool, func() (domain.Meeting, error) {
		return wrapMeeting(f.meetings.Get(ctx, meetingID))
	})
	if err != nil {
		return domain.Meeting{}, status.Unavailable("submit get meeting: %v", err)
	}
	return future.Get()
}

func wrapMeeting(meeting domain.Meeting, err error) (domain.Meeting, error) {
	if err != nil {
		return domain.Meeting{}, mapServiceError(err)
	}
	return meeting, nil
}
