package status

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestError_Error_FormatsCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := New(codes.NotFound, "meeting %q not found", "abc123")
	if got := err.Error(); got != "NotFound: meeting \"abc123\" not found" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestError_Error_NilReceiver(t *testing.T) {
	t.Parallel()

	var err *Error
	if got := err.Error(); got != "" {
		t.Fatalf("Error() on nil receiver = %q, want empty string", got)
	}
}

func TestConstructors_BuildExpectedCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *Error
		want codes.Code
	}{
		{"InvalidArgument", InvalidArgument("bad"), codes.InvalidArgument},
		{"NotFound", NotFound("missing"), codes.NotFound},
		{"AlreadyExists", AlreadyExists("dup"), codes.AlreadyExists},
		{"Internal", Internal("oops"), codes.Internal},
		{"Unavailable", Unavailable("down"), codes.Unavailable},
		{"Unauthenticated", Unauthenticated("nope"), codes.Unauthenticated},
	}
	for _, c := range cases {
		if c.err.Code != c.want {
			t.Errorf("%s: Code = %v, want %v", c.name, c.err.Code, c.want)
		}
	}
}

func TestCode_NilErrorMapsToOK(t *testing.T) {
	t.Parallel()

	if got := Code(nil); got != codes.OK {
		t.Fatalf("Code(nil) = %v, want OK", got)
	}
}

func TestCode_StatusErrorMapsToItsOwnCode(t *testing.T) {
	t.Parallel()

	if got := Code(NotFound("x")); got != codes.NotFound {
		t.Fatalf("Code(NotFound) = %v, want NotFound", got)
	}
}

func TestCode_UnmappedErrorMapsToInternal(t *testing.T) {
	t.Parallel()

	if got := Code(errors.New("plain")); got != codes.Internal {
		t.Fatalf("Code(plain error) = %v, want Internal", got)
	}
}

func TestCode_WrappedStatusErrorStillResolves(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(NotFound("x"))
	if got := Code(wrapped); got != codes.NotFound {
		t.Fatalf("Code(wrapped) = %v, want NotFound", got)
	}
}

func TestIs(t *testing.T) {
	t.Parallel()

	if !Is(NotFound("x"), codes.NotFound) {
		t.Fatalf("expected Is to match a matching code")
	}
	if Is(NotFound("x"), codes.Internal) {
		t.Fatalf("expected Is to reject a non-matching code")
	}
}
