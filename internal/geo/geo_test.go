package geo

import (
	"net"
	"testing"

	"google.golang.org/grpc/codes"

	"github.com/meeting-platform/core/internal/status"
)

// Resolve's database-hit path is not covered here: it requires a real
// MaxMind .mmdb fixture, which is outside what this repository ships. Its
// three short-circuit outcomes — nil ip, private range, and an unopened
// database — don't touch the database and are exercised directly below.
func TestIsPrivate(t *testing.T) {
	cases := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"fc00::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"2606:4700:4700::1111", false},
	}

	for _, c := range cases {
		ip := net.ParseIP(c.ip)
		if ip == nil {
			t.Fatalf("failed to parse test IP %q", c.ip)
		}
		if got := IsPrivate(ip); got != c.private {
			t.Errorf("IsPrivate(%s) = %v, want %v", c.ip, got, c.private)
		}
	}
}

func TestIsPrivate_NilIP(t *testing.T) {
	if !IsPrivate(nil) {
		t.Fatalf("expected a nil IP to be treated as private")
	}
}

func TestLookup_Resolve_NilIPIsInvalidArgument(t *testing.T) {
	l := &Lookup{}
	_, err := l.Resolve(nil)
	statusErr, ok := err.(*status.Error)
	if !ok {
		t.Fatalf("expected a *status.Error, got %T (%v)", err, err)
	}
	if statusErr.Code != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", statusErr.Code)
	}
}

func TestLookup_Resolve_PrivateIPSkipsDatabase(t *testing.T) {
	l := &Lookup{}
	loc, err := l.Resolve(net.ParseIP("192.168.1.1"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !loc.IsPrivate {
		t.Fatalf("expected IsPrivate to be set for a private ip")
	}
	if loc.Country != "" || loc.City != "" {
		t.Fatalf("expected a zero-value location besides IsPrivate, got %+v", loc)
	}
}

func TestLookup_Resolve_UnopenedDatabaseIsUnavailable(t *testing.T) {
	l := &Lookup{}
	_, err := l.Resolve(net.ParseIP("8.8.8.8"))
	statusErr, ok := err.(*status.Error)
	if !ok {
		t.Fatalf("expected a *status.Error, got %T (%v)", err, err)
	}
	if statusErr.Code != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", statusErr.Code)
	}
}
