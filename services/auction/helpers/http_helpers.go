package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"car-auction/internal/auctionerrors"
	"car-auction/utils"

	"github.com/gin-gonic/gin"
)

// PrivilegedKey is the gin context key carrying the "is privileged
// caller" flag set by the auth middleware.
const PrivilegedKey = "privileged"

// IsPrivileged reports whether the auth middleware marked this caller as
// an admin.
func IsPrivileged(c *gin.Context) bool {
	return c.GetBool(PrivilegedKey)
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrMissingID):
		return http.StatusBadRequest, "missing identifier"
	case errors.Is(err, auctionerrors.ErrEmptyBidderName):
		return http.StatusBadRequest, "bidder name is required"
	case errors.Is(err, auctionerrors.ErrInvalidPhoneFormat):
		return http.StatusBadRequest, "invalid phone number format"
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "bid amount must be greater than zero"
	case errors.Is(err, auctionerrors.ErrInvalidStartingPrice):
		return http.StatusBadRequest, "starting price must be greater than zero"
	case errors.Is(err, auctionerrors.ErrInvalidMinIncrement):
		return http.StatusBadRequest, "minimum increment must be greater than zero"
	case errors.Is(err, auctionerrors.ErrReserveBelowStarting):
		return http.StatusBadRequest, "reserve price must not be below the starting price"
	case errors.Is(err, auctionerrors.ErrEndTimeNotFuture):
		return http.StatusBadRequest, "end time must be in the future"
	case errors.Is(err, auctionerrors.ErrInvalidStatus):
		return http.StatusBadRequest, "unknown auction status"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, auctionerrors.ErrAuctionExpired):
		return http.StatusConflict, "auction has expired"
	case errors.Is(err, auctionerrors.ErrAuctionExists):
		return http.StatusConflict, "car already has an auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps the error and sends the standardized failure
// envelope. Internal errors never leak storage details to the caller.
func RespondError(c *gin.Context, handlerName string, err error) {
	status, message := MapErrorToHTTP(err)
	if status == http.StatusInternalServerError {
		utils.JSONError(c, status, errors.New(message), message)
	} else {
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	}
	utils.Warn(handlerName+": request failed", map[string]any{
		"status": status,
		"error":  err.Error(),
	})
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
