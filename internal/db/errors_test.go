package db

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_WrapsOperation(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &Error{Op: OpHSet, Err: underlying}

	if got := err.Error(); got != "HSET: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, underlying) {
		t.Error("wrapped error not reachable via errors.Is")
	}
}

func TestError_SentinelUnwrap(t *testing.T) {
	err := fmt.Errorf("acquire: %w", &Error{Op: OpSet, Err: ErrLockHeld})

	if !errors.Is(err, ErrLockHeld) {
		t.Error("ErrLockHeld not reachable through the wrapper chain")
	}
	if errors.Is(err, ErrKeyNotFound) {
		t.Error("unexpected ErrKeyNotFound match")
	}
}
