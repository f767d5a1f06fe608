package handler

import (
	"context"
	"net/http"
	"time"

	auction "car-auction/internal/auctionService"
	"car-auction/internal/auctionerrors"
	model "car-auction/internal/models"
	"car-auction/services/auction/helpers"
	"car-auction/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, params auction.CreateAuctionParams) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetAuctionForCar(ctx context.Context, carID string) (model.Auction, error)
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	PlaceBid(ctx context.Context, auctionID, bidderName, phoneNumber string, amount float64) (model.Auction, error)
	UpdateAuction(ctx context.Context, auctionID string, patch auction.AuctionPatch) (model.Auction, error)
	CancelAuction(ctx context.Context, auctionID string) (model.Auction, error)
	EndAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ExtendAuction(ctx context.Context, auctionID string, newEndTime time.Time) (model.Auction, error)
	RemoveBid(ctx context.Context, auctionID, bidID string) (model.Auction, error)
	CancelAuctionForCar(ctx context.Context, carID string) (model.Auction, error)
	DeleteAuctionForCar(ctx context.Context, carID string) error
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /cars/:car_id/auction
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	carID := c.Param("car_id")

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	created, err := h.service.CreateAuction(c.Request.Context(), auction.CreateAuctionParams{
		CarID:         carID,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		MinIncrement:  req.MinIncrement,
		EndTime:       req.EndTime,
	})
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(created, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusCreated, resp, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id":     created.AuctionID,
		"car_id":         carID,
		"starting_price": created.StartingPrice,
	})
}

// GetAuctionForCarHandler handles GET /cars/:car_id/auction
func (h *AuctionHandler) GetAuctionForCarHandler(c *gin.Context) {
	carID := c.Param("car_id")

	found, err := h.service.GetAuctionForCar(c.Request.Context(), carID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionForCarHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(found, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionForCarHandler", "auction retrieved successfully", map[string]any{
		"auction_id": found.AuctionID,
		"car_id":     carID,
	})
}

// DeleteAuctionForCarHandler handles DELETE /cars/:car_id/auction. The
// default is a cancel that keeps the bid log; ?purge=true hard-deletes
// auction and bids and is meant for the car-deletion cascade.
func (h *AuctionHandler) DeleteAuctionForCarHandler(c *gin.Context) {
	carID := c.Param("car_id")

	if c.Query("purge") == "true" {
		if err := h.service.DeleteAuctionForCar(c.Request.Context(), carID); err != nil {
			helpers.RespondError(c, "DeleteAuctionForCarHandler", err)
			return
		}
		utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
		helpers.LogSuccess("DeleteAuctionForCarHandler", "auction deleted successfully", map[string]any{"car_id": carID})
		return
	}

	cancelled, err := h.service.CancelAuctionForCar(c.Request.Context(), carID)
	if err != nil {
		helpers.RespondError(c, "DeleteAuctionForCarHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(cancelled, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "auction cancelled successfully")
	helpers.LogSuccess("DeleteAuctionForCarHandler", "auction cancelled successfully", map[string]any{
		"auction_id": cancelled.AuctionID,
		"car_id":     carID,
	})
}

// ListAuctionsHandler handles GET /auctions?status=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	var status model.AuctionStatus
	if raw := c.Query("status"); raw != "" {
		status = model.AuctionStatus(raw)
		switch status {
		case model.StatusActive, model.StatusEnded, model.StatusCancelled, model.StatusSold:
		default:
			utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrInvalidStatus, "unknown auction status")
			utils.Warn("ListAuctionsHandler: unknown status filter", map[string]any{"status": raw})
			return
		}
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), status)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err)
		return
	}

	resp := helpers.NewAuctionListResponse(auctions, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"status": status,
		"count":  len(resp),
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	found, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(found, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionHandler", "auction retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"bid_count":  resp.BidCount,
	})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	updated, err := h.service.PlaceBid(c.Request.Context(), auctionID, req.BidderName, req.PhoneNumber, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(updated, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusCreated, resp, "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"auction_id":    auctionID,
		"amount":        req.Amount,
		"current_price": updated.CurrentPrice,
	})
}

// UpdateAuctionHandler handles PUT /auctions/:auction_id. The body either
// names a lifecycle command (cancel, end_early, extend) or patches the
// auction terms; a command wins over patch fields when both are present.
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	var (
		updated model.Auction
		err     error
		message string
	)
	switch req.Command {
	case "cancel":
		updated, err = h.service.CancelAuction(c.Request.Context(), auctionID)
		message = "auction cancelled successfully"
	case "end_early":
		updated, err = h.service.EndAuction(c.Request.Context(), auctionID)
		message = "auction ended successfully"
	case "extend":
		if req.EndTime == nil {
			utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrEndTimeNotFuture, "extend requires end_time")
			utils.Warn("UpdateAuctionHandler: extend without end_time", map[string]any{"auction_id": auctionID})
			return
		}
		updated, err = h.service.ExtendAuction(c.Request.Context(), auctionID, *req.EndTime)
		message = "auction extended successfully"
	default:
		updated, err = h.service.UpdateAuction(c.Request.Context(), auctionID, auction.AuctionPatch{
			StartingPrice: req.StartingPrice,
			ReservePrice:  req.ReservePrice,
			MinIncrement:  req.MinIncrement,
			EndTime:       req.EndTime,
		})
		message = "auction updated successfully"
	}
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(updated, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, message)
	helpers.LogSuccess("UpdateAuctionHandler", message, map[string]any{
		"auction_id": auctionID,
		"command":    req.Command,
		"status":     resp.Status,
	})
}

// DeleteAuctionHandler handles DELETE /auctions/:auction_id, which is a
// cancel; the auction row and bid log are kept for audit.
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	cancelled, err := h.service.CancelAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(cancelled, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "auction cancelled successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction cancelled successfully", map[string]any{"auction_id": auctionID})
}

// RemoveBidHandler handles DELETE /auctions/:auction_id/bids/:bid_id
func (h *AuctionHandler) RemoveBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bidID := c.Param("bid_id")

	updated, err := h.service.RemoveBid(c.Request.Context(), auctionID, bidID)
	if err != nil {
		helpers.RespondError(c, "RemoveBidHandler", err)
		return
	}

	resp := helpers.NewAuctionResponse(updated, helpers.IsPrivileged(c))
	utils.JSONResponse(c, http.StatusOK, resp, "bid removed successfully")
	helpers.LogSuccess("RemoveBidHandler", "bid removed successfully", map[string]any{
		"auction_id":    auctionID,
		"bid_id":        bidID,
		"current_price": updated.CurrentPrice,
	})
}
