package payment

import "errors"

var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrMalformedEvent    = errors.New("malformed event payload")
	ErrPaymentsDisabled  = errors.New("payment provider is not configured")
	ErrTourNotFound      = errors.New("tour not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrPortalUnavailable = errors.New("billing portal is not available")
)
