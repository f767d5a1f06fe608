package auctionerrors

import "errors"

// Validation errors (malformed or missing input)
var (
	ErrMissingID            = errors.New("missing identifier")
	ErrEmptyBidderName      = errors.New("bidder name is empty")
	ErrInvalidPhoneFormat   = errors.New("invalid phone number format")
	ErrInvalidAmount        = errors.New("bid amount must be greater than zero")
	ErrInvalidStartingPrice = errors.New("starting price must be greater than zero")
	ErrInvalidMinIncrement  = errors.New("minimum increment must be greater than zero")
	ErrReserveBelowStarting = errors.New("reserve price must not be below the starting price")
	ErrEndTimeNotFuture     = errors.New("end time must be in the future")
	ErrInvalidStatus        = errors.New("unknown auction status")
)

// Bid rejections (business-rule failures, distinct from malformed input)
var (
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrAuctionClosed  = errors.New("auction is closed")
	ErrAuctionExpired = errors.New("auction has expired")
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrAuctionExists   = errors.New("car already has an auction")
)
