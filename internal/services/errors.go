package services

import "errors"

var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrInvalidGuestCount         = errors.New("number of guests must be at least 1")
	ErrVenueRequired             = errors.New("venue is required for artist bookings")
	ErrSlotUnavailable           = errors.New("no slot is available for booking")
	ErrGuestLimitExceeded        = errors.New("no of guests exceeds guest limit")
	ErrBookingNotFound           = errors.New("booking not found")
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrForbidden                 = errors.New("not allowed to act on this booking")
	ErrGatewayFailure            = errors.New("payment gateway failure")
)
