package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"car-auction/internal/auctionerrors"
	model "car-auction/internal/models"
)

// AuctionStore defines auction persistence with per-auction mutual
// exclusion. Reads return snapshots and never block writers for long;
// UpdateAuction serializes all state-changing operations on one auction so
// racing bidders and admin commands are linearized.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetAuctionForCar(ctx context.Context, carID string) (model.Auction, error)
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	ListExpired(ctx context.Context, now time.Time) ([]string, error)
	// UpdateAuction runs apply on the authoritative aggregate while holding
	// the auction's exclusion scope. The mutation is persisted only when
	// apply returns nil; any error rolls the aggregate back untouched.
	UpdateAuction(ctx context.Context, auctionID string, apply func(*model.Auction) error) (model.Auction, error)
	// DeleteAuctionForCar removes an auction and its bids outright. This is
	// the cascade path for car deletion; everything else cancels instead.
	DeleteAuctionForCar(ctx context.Context, carID string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of
// AuctionStore. Each auction carries its own mutex so operations on
// different auctions never contend; the store-level lock only guards the
// maps themselves.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]*auctionEntry // key: auctionID
	byCar    map[string]string        // key: carID -> auctionID
}

type auctionEntry struct {
	mu      sync.Mutex
	auction model.Auction
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]*auctionEntry),
		byCar:    make(map[string]string),
	}
}

// CreateAuction registers a new auction. A car can hold at most one
// auction at a time.
func (s *MemoryStore) CreateAuction(ctx context.Context, auction model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionExists)
	}
	if existingID, ok := s.byCar[auction.CarID]; ok {
		if entry := s.auctions[existingID]; entry != nil && entry.auction.Status == model.StatusActive {
			return fmt.Errorf("create auction for car %s: %w", auction.CarID, auctionerrors.ErrAuctionExists)
		}
	}

	s.auctions[auction.AuctionID] = &auctionEntry{auction: cloneAuction(auction)}
	s.byCar[auction.CarID] = auction.AuctionID
	return nil
}

// GetAuction returns a snapshot of an auction with its bid log.
func (s *MemoryStore) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	s.mu.RLock()
	entry, ok := s.auctions[auctionID]
	s.mu.RUnlock()

	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneAuction(entry.auction), nil
}

// GetAuctionForCar returns the snapshot of the car's auction, if any.
func (s *MemoryStore) GetAuctionForCar(ctx context.Context, carID string) (model.Auction, error) {
	s.mu.RLock()
	auctionID, ok := s.byCar[carID]
	s.mu.RUnlock()

	if !ok {
		return model.Auction{}, fmt.Errorf("get auction for car %s: %w", carID, auctionerrors.ErrAuctionNotFound)
	}
	return s.GetAuction(ctx, auctionID)
}

// ListAuctions returns snapshots sorted soonest-ending-first, optionally
// filtered by status. An empty status returns all auctions.
func (s *MemoryStore) ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	s.mu.RLock()
	entries := make([]*auctionEntry, 0, len(s.auctions))
	for _, entry := range s.auctions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		snapshot := cloneAuction(entry.auction)
		entry.mu.Unlock()

		if status != "" && snapshot.Status != status {
			continue
		}
		auctions = append(auctions, snapshot)
	}

	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].EndTime.Before(auctions[j].EndTime)
	})
	return auctions, nil
}

// ListExpired returns the ids of ACTIVE auctions whose deadline has passed.
func (s *MemoryStore) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	auctions, err := s.ListAuctions(ctx, model.StatusActive)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, a := range auctions {
		if !now.Before(a.EndTime) {
			ids = append(ids, a.AuctionID)
		}
	}
	return ids, nil
}

// UpdateAuction applies a mutation while holding the auction's own mutex.
// Apply runs against a working copy; the copy replaces the stored aggregate
// only on success, so a failed validation leaves no trace.
func (s *MemoryStore) UpdateAuction(ctx context.Context, auctionID string, apply func(*model.Auction) error) (model.Auction, error) {
	s.mu.RLock()
	entry, ok := s.auctions[auctionID]
	s.mu.RUnlock()

	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := cloneAuction(entry.auction)
	if err := apply(&working); err != nil {
		return model.Auction{}, err
	}
	working.UpdatedAt = time.Now().UTC()

	entry.auction = working
	return cloneAuction(working), nil
}

// DeleteAuctionForCar removes the car's auction and bid log entirely.
func (s *MemoryStore) DeleteAuctionForCar(ctx context.Context, carID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auctionID, ok := s.byCar[carID]
	if !ok {
		return fmt.Errorf("delete auction for car %s: %w", carID, auctionerrors.ErrAuctionNotFound)
	}

	delete(s.auctions, auctionID)
	delete(s.byCar, carID)
	return nil
}

// cloneAuction deep-copies the aggregate so snapshots never alias the
// stored bid log.
func cloneAuction(a model.Auction) model.Auction {
	clone := a
	if a.ReservePrice != nil {
		reserve := *a.ReservePrice
		clone.ReservePrice = &reserve
	}
	clone.Bids = append([]model.Bid(nil), a.Bids...)
	return clone
}
