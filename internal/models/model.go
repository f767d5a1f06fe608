package models

import (
	"time"

	"car-auction/internal/auctionerrors"
)

// AuctionStatus is the lifecycle state of an auction.
// ACTIVE is the only non-terminal state.
type AuctionStatus string

const (
	StatusActive    AuctionStatus = "ACTIVE"
	StatusEnded     AuctionStatus = "ENDED"
	StatusCancelled AuctionStatus = "CANCELLED"
	StatusSold      AuctionStatus = "SOLD"
)

// DefaultMinIncrement is the minimum amount a new bid must exceed the
// current price by when no explicit increment is configured.
const DefaultMinIncrement = 100

// Bid represents an accepted offer on an auction. Bids are immutable once
// accepted; admin removal is a correction, not part of bidding semantics.
type Bid struct {
	BidID       string    `json:"bid_id"`
	AuctionID   string    `json:"auction_id"`
	BidderName  string    `json:"bidder_name"`
	PhoneNumber string    `json:"phone_number"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Auction is the aggregate for a single-item English auction on a car.
// It owns its bid log; current price always equals the highest accepted
// bid, or the starting price when no bids exist. The aggregate itself is
// not synchronized: the store serializes all mutating access per auction.
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	CarID         string        `json:"car_id"`
	StartingPrice float64       `json:"starting_price"`
	ReservePrice  *float64      `json:"reserve_price,omitempty"`
	CurrentPrice  float64       `json:"current_price"`
	MinIncrement  float64       `json:"min_increment"`
	EndTime       time.Time     `json:"end_time"`
	Status        AuctionStatus `json:"status"`
	WinnerPhone   string        `json:"winner_phone,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Bids          []Bid         `json:"bids"` // append order, oldest first
}

// IsTerminal reports whether no further status transitions are allowed.
func (a *Auction) IsTerminal() bool {
	return a.Status != StatusActive
}

// BidCount returns the number of bids in the log.
func (a *Auction) BidCount() int {
	return len(a.Bids)
}

// HighestBid returns the highest bid in the log, preferring the earlier
// bid on equal amounts. The second return is false when the log is empty.
func (a *Auction) HighestBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	highest := a.Bids[0]
	for _, b := range a.Bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, true
}

// ReserveMet reports whether the current price satisfies the reserve.
// An absent reserve is always met.
func (a *Auction) ReserveMet() bool {
	return a.ReservePrice == nil || a.CurrentPrice >= *a.ReservePrice
}

// RecomputeCurrentPrice derives the current price from the bid log rather
// than trusting the cached value, so bid removal can never leave the price
// above the actual highest remaining bid.
func (a *Auction) RecomputeCurrentPrice() {
	a.CurrentPrice = a.StartingPrice
	if highest, ok := a.HighestBid(); ok && highest.Amount > a.CurrentPrice {
		a.CurrentPrice = highest.Amount
	}
}

// ApplyBid appends an accepted bid to the log and recomputes the current
// price. Validation must have happened under the store's exclusion scope.
func (a *Auction) ApplyBid(bid Bid) {
	a.Bids = append(a.Bids, bid)
	a.RecomputeCurrentPrice()
}

// RemoveBid deletes a bid from the log and recomputes the current price
// as max(startingPrice, highest remaining bid).
func (a *Auction) RemoveBid(bidID string) error {
	for i, b := range a.Bids {
		if b.BidID == bidID {
			a.Bids = append(a.Bids[:i], a.Bids[i+1:]...)
			a.RecomputeCurrentPrice()
			return nil
		}
	}
	return auctionerrors.ErrBidNotFound
}

// Cancel transitions ACTIVE -> CANCELLED. Bids are retained for audit.
func (a *Auction) Cancel() error {
	if a.IsTerminal() {
		return auctionerrors.ErrAuctionClosed
	}
	a.Status = StatusCancelled
	return nil
}

// Close transitions ACTIVE -> SOLD or ENDED. The auction is SOLD when at
// least one bid exists and the reserve (if any) is met; the winner phone is
// then set to the unmasked phone of the highest bid. Otherwise it ENDED
// with no qualifying winner.
func (a *Auction) Close() error {
	if a.IsTerminal() {
		return auctionerrors.ErrAuctionClosed
	}
	highest, hasBids := a.HighestBid()
	if hasBids && a.ReserveMet() {
		a.Status = StatusSold
		a.WinnerPhone = highest.PhoneNumber
		return nil
	}
	a.Status = StatusEnded
	return nil
}

// Extend replaces the end time with a later deadline. The new end time must
// satisfy the same strictly-future invariant as creation. Status does not
// change.
func (a *Auction) Extend(newEndTime, now time.Time) error {
	if a.IsTerminal() {
		return auctionerrors.ErrAuctionClosed
	}
	if !newEndTime.After(now) {
		return auctionerrors.ErrEndTimeNotFuture
	}
	a.EndTime = newEndTime
	return nil
}
