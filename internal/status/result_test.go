package status

import (
	"errors"
	"testing"
)

func TestResult_Ok(t *testing.T) {
	t.Parallel()

	r := Ok(42)
	if !r.IsOK() {
		t.Fatalf("expected Ok result to report IsOK")
	}
	if r.Value != 42 {
		t.Fatalf("Value = %d, want 42", r.Value)
	}
}

func TestResult_Failed(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	r := Failed[int](wantErr)
	if r.IsOK() {
		t.Fatalf("expected Failed result to report !IsOK")
	}
	if !errors.Is(r.Err, wantErr) {
		t.Fatalf("Err = %v, want %v", r.Err, wantErr)
	}
	if r.Value != 0 {
		t.Fatalf("Value = %d, want zero value", r.Value)
	}
}
