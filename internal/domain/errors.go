package domain

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateBooking = errors.New("booking already exists for tour and user")
)
