package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestContextWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	ctx := ContextWithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatalf("FromContext returned a different logger than was stored")
	}
}

func TestContextWithLogger_NilLoggerLeavesContextUnchanged(t *testing.T) {
	t.Parallel()

	base := context.Background()
	if got := ContextWithLogger(base, nil); got != base {
		t.Fatalf("expected a nil logger to leave the context unchanged")
	}
}

func TestFromContext_NoLoggerAttached(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected FromContext to return nil when no logger was attached, got %v", got)
	}
}

func TestFromContext_NilContext(t *testing.T) {
	t.Parallel()

	if got := FromContext(nil); got != nil {
		t.Fatalf("expected FromContext(nil) to return nil")
	}
}
