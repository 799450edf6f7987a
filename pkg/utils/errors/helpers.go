package errors

import stderrors "errors"

// FromError resolves err to an Errno, unwrapping as needed. Errors that do
// not carry an Errno anywhere in their chain become ErrInternal.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if stderrors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}
