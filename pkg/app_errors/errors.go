package apperrors

import "errors"

var (
	ErrEventNotFound            = errors.New("event not found")
	ErrOfferingNotFound         = errors.New("offering not found")
	ErrTierNotFound             = errors.New("vip tier not found")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrTierFull                 = errors.New("vip tier is fully booked")
	ErrSalesClosed              = errors.New("sales are not open")
	ErrExceedsMaxPerOrder       = errors.New("exceeds max tickets per order")
	ErrEmptySelection           = errors.New("no tickets selected")
	ErrValidation               = errors.New("validation failed")
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidReservationStatus = errors.New("invalid reservation status")
	ErrInventoryNotLoaded       = errors.New("inventory not loaded")
	ErrDuplicateReservation     = errors.New("reservation already persisted")
	ErrInternalServerError      = errors.New("internal server error")
)
