package model

import "errors"

// Validation errors returned by the Validate methods.
var (
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInvalidAccountGroup   = errors.New("invalid account group")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInvalidPlannedPayment = errors.New("invalid planned payment")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrInvalidCategoryGroup  = errors.New("invalid category group")
	ErrInvalidProject        = errors.New("invalid project")
	ErrInvalidCounterparty   = errors.New("invalid counterparty")
	ErrUnknownCollection     = errors.New("unknown collection")
)
