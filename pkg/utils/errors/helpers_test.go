package errors

import (
	"fmt"
	"testing"
)

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}

	if e := FromError(ErrEmptyFile); e != ErrEmptyFile {
		t.Error("FromError should return the errno itself")
	}

	// Errnos wrapped with %w resolve through the chain.
	wrapped := fmt.Errorf("handler: %w", ErrEmptyFile)
	if e := FromError(wrapped); e != ErrEmptyFile {
		t.Errorf("FromError(wrapped) = %v, want ErrEmptyFile", e)
	}

	if e := FromError(fmt.Errorf("boom")); e.Code != ErrInternal.Code {
		t.Errorf("FromError(plain).Code = %d, want ErrInternal", e.Code)
	}
}
