package booking

import "errors"

var (
	ErrUnresolvedUser    = errors.New("no user matches the session customer email")
	ErrIncompleteSession = errors.New("session has no item reference or customer email")
	ErrUnknownSession    = errors.New("payment session not found at provider")
	ErrTransient         = errors.New("transient reconciliation failure")
)
