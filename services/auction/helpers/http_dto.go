package helpers

import (
	"sort"
	"time"

	"car-auction/internal/models"
	"car-auction/internal/phonemask"
)

// Request DTOs
type PlaceBidRequest struct {
	BidderName  string  `json:"bidder_name" binding:"required"`
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

type CreateAuctionRequest struct {
	StartingPrice float64   `json:"starting_price" binding:"required,gt=0"`
	ReservePrice  *float64  `json:"reserve_price"`
	MinIncrement  float64   `json:"min_increment"`
	EndTime       time.Time `json:"end_time" binding:"required"`
}

// UpdateAuctionRequest is either a field patch or a lifecycle command.
type UpdateAuctionRequest struct {
	Command       string     `json:"command" binding:"omitempty,oneof=cancel end_early extend"`
	StartingPrice *float64   `json:"starting_price"`
	ReservePrice  *float64   `json:"reserve_price"`
	MinIncrement  *float64   `json:"min_increment"`
	EndTime       *time.Time `json:"end_time"`
}

// Response DTOs
type BidResponse struct {
	BidID       string  `json:"bid_id"`
	BidderName  string  `json:"bidder_name"`
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	CreatedAt   string  `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID     string        `json:"auction_id"`
	CarID         string        `json:"car_id"`
	StartingPrice float64       `json:"starting_price"`
	ReservePrice  *float64      `json:"reserve_price,omitempty"`
	CurrentPrice  float64       `json:"current_price"`
	MinIncrement  float64       `json:"min_increment"`
	EndTime       string        `json:"end_time"`
	Status        string        `json:"status"`
	WinnerPhone   string        `json:"winner_phone,omitempty"`
	BidCount      int           `json:"bid_count"`
	Bids          []BidResponse `json:"bids,omitempty"`
}

// NewAuctionResponse builds the public view of an auction. Phone numbers
// are masked unless the caller is privileged; bids are listed highest
// first, equal amounts in the order they arrived.
func NewAuctionResponse(a models.Auction, privileged bool) AuctionResponse {
	resp := newAuctionSummary(a, privileged)

	resp.Bids = make([]BidResponse, 0, len(a.Bids))
	for _, b := range a.Bids {
		resp.Bids = append(resp.Bids, newBidResponse(b, privileged))
	}
	sort.SliceStable(resp.Bids, func(i, j int) bool {
		return resp.Bids[i].Amount > resp.Bids[j].Amount
	})
	return resp
}

// NewAuctionListResponse builds list views without bid logs; the bid
// count is enough for listings.
func NewAuctionListResponse(auctions []models.Auction, privileged bool) []AuctionResponse {
	resp := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, newAuctionSummary(a, privileged))
	}
	return resp
}

func newAuctionSummary(a models.Auction, privileged bool) AuctionResponse {
	winnerPhone := a.WinnerPhone
	if !privileged && winnerPhone != "" {
		winnerPhone = phonemask.Mask(winnerPhone)
	}
	return AuctionResponse{
		AuctionID:     a.AuctionID,
		CarID:         a.CarID,
		StartingPrice: a.StartingPrice,
		ReservePrice:  a.ReservePrice,
		CurrentPrice:  a.CurrentPrice,
		MinIncrement:  a.MinIncrement,
		EndTime:       a.EndTime.UTC().Format(time.RFC3339),
		Status:        string(a.Status),
		WinnerPhone:   winnerPhone,
		BidCount:      a.BidCount(),
	}
}

func newBidResponse(b models.Bid, privileged bool) BidResponse {
	phone := b.PhoneNumber
	if !privileged {
		phone = phonemask.Mask(phone)
	}
	return BidResponse{
		BidID:       b.BidID,
		BidderName:  b.BidderName,
		PhoneNumber: phone,
		Amount:      b.Amount,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
