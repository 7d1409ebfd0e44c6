package download

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	errs := []error{
		ErrProviderBlocked, ErrRateLimited, ErrNetwork, ErrNotFound,
		ErrUnknownFailure, ErrArtifactMissing, ErrInterrupted,
	}

	// Verify errors are distinct
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}

	// Verify error messages are non-empty
	for _, err := range errs {
		if err.Error() == "" {
			t.Errorf("error %v should have a message", err)
		}
	}
}
