package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-auction/internal/auctionerrors"
	"car-auction/internal/models"
	"car-auction/internal/phonemask"
	"car-auction/internal/repository"
	"car-auction/utils"
)

// errNotExpired marks a sweep candidate whose deadline moved forward after
// it was listed; the sweep skips it without counting a failure.
var errNotExpired = errors.New("auction not expired")

// AuctionService implements the business logic of the auction core: bid
// placement, admin lifecycle commands, and the deadline sweep. All
// state-changing operations re-validate inside the store's per-auction
// exclusion scope, never against the snapshot they started from.
type AuctionService struct {
	store repository.AuctionStore
	now   func() time.Time
}

// NewAuctionService creates a new AuctionService instance.
func NewAuctionService(store repository.AuctionStore) *AuctionService {
	return &AuctionService{
		store: store,
		now:   time.Now,
	}
}

// CreateAuctionParams carries the admin input for a new auction.
type CreateAuctionParams struct {
	CarID         string
	StartingPrice float64
	ReservePrice  *float64
	MinIncrement  float64 // zero means models.DefaultMinIncrement
	EndTime       time.Time
}

// AuctionPatch is a partial update of auction fields; nil means unchanged.
type AuctionPatch struct {
	StartingPrice *float64
	ReservePrice  *float64
	MinIncrement  *float64
	EndTime       *time.Time
}

// CreateAuction creates an ACTIVE auction for a car. Current price starts
// at the starting price.
func (s *AuctionService) CreateAuction(ctx context.Context, params CreateAuctionParams) (models.Auction, error) {
	if params.CarID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - car id", auctionerrors.ErrMissingID)
	}
	if params.MinIncrement == 0 {
		params.MinIncrement = models.DefaultMinIncrement
	}

	now := s.now().UTC()
	if err := validateAuctionTerms(params.StartingPrice, params.ReservePrice, params.MinIncrement, params.EndTime, now); err != nil {
		return models.Auction{}, fmt.Errorf("service: invalid auction terms: %w", err)
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		CarID:         params.CarID,
		StartingPrice: params.StartingPrice,
		ReservePrice:  params.ReservePrice,
		CurrentPrice:  params.StartingPrice,
		MinIncrement:  params.MinIncrement,
		EndTime:       params.EndTime,
		Status:        models.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for car %s: %w", params.CarID, err)
	}

	utils.Info("auction created", map[string]any{
		"auction_id":     auction.AuctionID,
		"car_id":         auction.CarID,
		"starting_price": auction.StartingPrice,
		"end_time":       auction.EndTime,
	})
	return auction, nil
}

// GetAuction returns an auction snapshot with its bid log.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - auction id", auctionerrors.ErrMissingID)
	}
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetAuctionForCar returns the auction attached to a car, if any.
func (s *AuctionService) GetAuctionForCar(ctx context.Context, carID string) (models.Auction, error) {
	if carID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - car id", auctionerrors.ErrMissingID)
	}
	auction, err := s.store.GetAuctionForCar(ctx, carID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction for car %s: %w", carID, err)
	}
	return auction, nil
}

// ListAuctions returns auctions sorted soonest-ending-first, optionally
// filtered by status.
func (s *AuctionService) ListAuctions(ctx context.Context, status models.AuctionStatus) ([]models.Auction, error) {
	auctions, err := s.store.ListAuctions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// PlaceBid validates and records a bid. Input checks run up front; the
// business rules run again on the authoritative state inside the exclusion
// scope, so a bidder who lost a race fails with BidTooLow instead of
// silently overwriting the winner's price.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, bidderName, phoneNumber string, amount float64) (models.Auction, error) {
	name := strings.TrimSpace(bidderName)
	if name == "" {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrEmptyBidderName)
	}
	if !phonemask.ValidFormat(phoneNumber) {
		return models.Auction{}, fmt.Errorf("service: %w - %q", auctionerrors.ErrInvalidPhoneFormat, phonemask.Mask(phoneNumber))
	}
	if amount <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidAmount)
	}

	bid := models.Bid{
		BidID:       utils.GenerateID(),
		AuctionID:   auctionID,
		BidderName:  name,
		PhoneNumber: phoneNumber,
		Amount:      amount,
		CreatedAt:   s.now().UTC(),
	}

	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		if err := validateBid(a, amount, s.now()); err != nil {
			return err
		}
		a.ApplyBid(bid)
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to place bid on auction %s: %w", auctionID, err)
	}

	utils.Info("bid accepted", map[string]any{
		"auction_id":    auctionID,
		"bid_id":        bid.BidID,
		"amount":        bid.Amount,
		"current_price": updated.CurrentPrice,
	})
	return updated, nil
}

// UpdateAuction applies a partial field update while the auction is ACTIVE.
// Patching the starting price recomputes the current price from the bid
// log so the aggregate invariant holds.
func (s *AuctionService) UpdateAuction(ctx context.Context, auctionID string, patch AuctionPatch) (models.Auction, error) {
	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		if a.IsTerminal() {
			return auctionerrors.ErrAuctionClosed
		}

		if patch.StartingPrice != nil {
			a.StartingPrice = *patch.StartingPrice
		}
		if patch.ReservePrice != nil {
			reserve := *patch.ReservePrice
			a.ReservePrice = &reserve
		}
		if patch.MinIncrement != nil {
			a.MinIncrement = *patch.MinIncrement
		}
		if patch.EndTime != nil {
			a.EndTime = *patch.EndTime
		}

		if err := validateAuctionTerms(a.StartingPrice, a.ReservePrice, a.MinIncrement, a.EndTime, s.now().UTC()); err != nil {
			return err
		}
		a.RecomputeCurrentPrice()
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to update auction %s: %w", auctionID, err)
	}

	utils.Info("auction updated", map[string]any{
		"auction_id":    auctionID,
		"current_price": updated.CurrentPrice,
		"end_time":      updated.EndTime,
	})
	return updated, nil
}

// CancelAuction transitions an ACTIVE auction to CANCELLED.
func (s *AuctionService) CancelAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		return a.Cancel()
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to cancel auction %s: %w", auctionID, err)
	}

	utils.Info("auction cancelled", map[string]any{"auction_id": auctionID})
	return updated, nil
}

// EndAuction ends an ACTIVE auction early, deciding SOLD vs ENDED with the
// reserve-price check.
func (s *AuctionService) EndAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		return a.Close()
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to end auction %s: %w", auctionID, err)
	}

	utils.Info("auction ended early", map[string]any{
		"auction_id":  auctionID,
		"status":      updated.Status,
		"final_price": updated.CurrentPrice,
	})
	return updated, nil
}

// ExtendAuction replaces the deadline of an ACTIVE auction.
func (s *AuctionService) ExtendAuction(ctx context.Context, auctionID string, newEndTime time.Time) (models.Auction, error) {
	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		return a.Extend(newEndTime, s.now())
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to extend auction %s: %w", auctionID, err)
	}

	utils.Info("auction extended", map[string]any{
		"auction_id": auctionID,
		"end_time":   updated.EndTime,
	})
	return updated, nil
}

// RemoveBid deletes a bid as an admin correction. The current price is
// recomputed from the remaining log, never trusted from the removed value.
func (s *AuctionService) RemoveBid(ctx context.Context, auctionID, bidID string) (models.Auction, error) {
	updated, err := s.store.UpdateAuction(ctx, auctionID, func(a *models.Auction) error {
		return a.RemoveBid(bidID)
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to remove bid %s from auction %s: %w", bidID, auctionID, err)
	}

	utils.Info("bid removed", map[string]any{
		"auction_id":    auctionID,
		"bid_id":        bidID,
		"current_price": updated.CurrentPrice,
		"bid_count":     updated.BidCount(),
	})
	return updated, nil
}

// CancelAuctionForCar cancels the car's auction when the car converts away
// from auction pricing. Bids are retained for audit.
func (s *AuctionService) CancelAuctionForCar(ctx context.Context, carID string) (models.Auction, error) {
	auction, err := s.store.GetAuctionForCar(ctx, carID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to cancel auction for car %s: %w", carID, err)
	}
	return s.CancelAuction(ctx, auction.AuctionID)
}

// DeleteAuctionForCar hard-deletes the car's auction and bids. Only the
// car-deletion cascade may call this.
func (s *AuctionService) DeleteAuctionForCar(ctx context.Context, carID string) error {
	if err := s.store.DeleteAuctionForCar(ctx, carID); err != nil {
		return fmt.Errorf("service: failed to delete auction for car %s: %w", carID, err)
	}

	utils.Info("auction deleted with car", map[string]any{"car_id": carID})
	return nil
}

// SweepExpiredAuctions closes every ACTIVE auction whose deadline has
// passed, applying the same SOLD/ENDED decision as an early end. Each
// candidate is re-checked under its exclusion scope, so a sweep racing an
// admin command skips instead of double-applying a transition. A failure
// on one auction is logged and does not abort the sweep. Returns the
// number of auctions closed.
func (s *AuctionService) SweepExpiredAuctions(ctx context.Context) (int, error) {
	ids, err := s.store.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	closed := 0
	for _, id := range ids {
		updated, err := s.store.UpdateAuction(ctx, id, func(a *models.Auction) error {
			if s.now().Before(a.EndTime) {
				return errNotExpired
			}
			return a.Close()
		})
		switch {
		case err == nil:
			closed++
			utils.Info("expired auction closed", map[string]any{
				"auction_id":  id,
				"status":      updated.Status,
				"final_price": updated.CurrentPrice,
			})
		case errors.Is(err, auctionerrors.ErrAuctionClosed), errors.Is(err, errNotExpired):
			// already handled by an admin command or extended meanwhile
			continue
		default:
			utils.Error("sweep failed for auction", map[string]any{
				"auction_id": id,
				"error":      err.Error(),
			})
		}
	}
	return closed, nil
}

// validateBid checks the business rules for a bid against the
// authoritative auction state. It is pure and side-effect free.
func validateBid(a *models.Auction, amount float64, now time.Time) error {
	if a.Status != models.StatusActive {
		return auctionerrors.ErrAuctionClosed
	}
	// a bid arriving at or after the deadline is rejected even before the
	// sweep has closed the auction
	if !now.Before(a.EndTime) {
		return auctionerrors.ErrAuctionExpired
	}
	if amount < a.CurrentPrice+a.MinIncrement {
		return fmt.Errorf("%w - minimum acceptable bid is %.2f", auctionerrors.ErrBidTooLow, a.CurrentPrice+a.MinIncrement)
	}
	return nil
}

// validateAuctionTerms checks the creation/update invariants on auction
// pricing and deadline.
func validateAuctionTerms(startingPrice float64, reservePrice *float64, minIncrement float64, endTime, now time.Time) error {
	if startingPrice <= 0 {
		return auctionerrors.ErrInvalidStartingPrice
	}
	if minIncrement <= 0 {
		return auctionerrors.ErrInvalidMinIncrement
	}
	if reservePrice != nil && *reservePrice < startingPrice {
		return auctionerrors.ErrReserveBelowStarting
	}
	if !endTime.After(now) {
		return auctionerrors.ErrEndTimeNotFuture
	}
	return nil
}
