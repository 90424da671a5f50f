package errs

import (
	"errors"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrEntitlementExhausted = errors.New("entitlement exhausted")
	ErrSlotFull             = errors.New("slot is full")
	ErrSlotNotFull          = errors.New("slot is not full")
	ErrSectionClosed        = errors.New("section is closed on the requested date")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidBookingType   = errors.New("invalid booking type")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
