// Package postgres implements the auction store on PostgreSQL. Per-auction
// mutual exclusion comes from row-level locking: every state-changing
// operation runs in a transaction that takes SELECT ... FOR UPDATE on the
// auction row, so racing bidders and admin commands are linearized by the
// database while reads stay lock-free snapshots.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-auction/internal/auctionerrors"
	model "car-auction/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a PostgreSQL-backed implementation of repository.AuctionStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// CreateAuction inserts a new auction row. The partial unique index on
// (car_id) WHERE status = 'ACTIVE' enforces one live auction per car.
func (s *Store) CreateAuction(ctx context.Context, auction model.Auction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auctions (id, car_id, starting_price, reserve_price, current_price,
		                      min_increment, end_time, status, winner_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		auction.AuctionID,
		auction.CarID,
		auction.StartingPrice,
		auction.ReservePrice,
		auction.CurrentPrice,
		auction.MinIncrement,
		auction.EndTime,
		auction.Status,
		auction.WinnerPhone,
		auction.CreatedAt,
		auction.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("create auction for car %s: %w", auction.CarID, auctionerrors.ErrAuctionExists)
	}
	if err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction returns an auction snapshot with its bid log.
func (s *Store) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	auction, err := s.scanAuction(ctx, s.pool, `
		SELECT id, car_id, starting_price, reserve_price, current_price,
		       min_increment, end_time, status, winner_phone, created_at, updated_at
		FROM auctions WHERE id = $1`, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}

	auction.Bids, err = s.loadBids(ctx, s.pool, auction.AuctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetAuctionForCar returns the car's most recent auction, if any.
func (s *Store) GetAuctionForCar(ctx context.Context, carID string) (model.Auction, error) {
	auction, err := s.scanAuction(ctx, s.pool, `
		SELECT id, car_id, starting_price, reserve_price, current_price,
		       min_increment, end_time, status, winner_phone, created_at, updated_at
		FROM auctions WHERE car_id = $1
		ORDER BY created_at DESC LIMIT 1`, carID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction for car %s: %w", carID, err)
	}

	auction.Bids, err = s.loadBids(ctx, s.pool, auction.AuctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction for car %s: %w", carID, err)
	}
	return auction, nil
}

// ListAuctions returns snapshots sorted soonest-ending-first, without bid
// logs; list views only need the aggregate fields and the bid count is
// loaded in one extra query per auction.
func (s *Store) ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	query := `
		SELECT id, car_id, starting_price, reserve_price, current_price,
		       min_increment, end_time, status, winner_phone, created_at, updated_at
		FROM auctions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY end_time ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		auction, err := scanAuctionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list auctions: %w", err)
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	for i := range auctions {
		auctions[i].Bids, err = s.loadBids(ctx, s.pool, auctions[i].AuctionID)
		if err != nil {
			return nil, fmt.Errorf("list auctions: %w", err)
		}
	}
	return auctions, nil
}

// ListExpired returns ids of ACTIVE auctions whose deadline has passed.
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM auctions
		WHERE status = $1 AND end_time <= $2
		ORDER BY end_time ASC`, model.StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("list expired auctions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list expired auctions: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateAuction loads the aggregate under SELECT ... FOR UPDATE, applies
// the mutation, and persists the result in the same transaction. Any error
// from apply rolls the transaction back untouched.
func (s *Store) UpdateAuction(ctx context.Context, auctionID string, apply func(*model.Auction) error) (model.Auction, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, err)
	}
	defer tx.Rollback(ctx)

	auction, err := s.scanAuction(ctx, tx, `
		SELECT id, car_id, starting_price, reserve_price, current_price,
		       min_increment, end_time, status, winner_phone, created_at, updated_at
		FROM auctions WHERE id = $1
		FOR UPDATE`, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, err)
	}

	auction.Bids, err = s.loadBids(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, err)
	}

	if err := apply(&auction); err != nil {
		return model.Auction{}, err
	}
	auction.UpdatedAt = time.Now().UTC()

	if err := s.persist(ctx, tx, auction); err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// DeleteAuctionForCar removes the car's auctions; bids go with them via
// the foreign-key cascade.
func (s *Store) DeleteAuctionForCar(ctx context.Context, carID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auctions WHERE car_id = $1`, carID)
	if err != nil {
		return fmt.Errorf("delete auction for car %s: %w", carID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete auction for car %s: %w", carID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// persist writes the aggregate back: the auction row, any new bids, and
// the removal of bids no longer in the log.
func (s *Store) persist(ctx context.Context, tx pgx.Tx, auction model.Auction) error {
	_, err := tx.Exec(ctx, `
		UPDATE auctions
		SET starting_price = $2, reserve_price = $3, current_price = $4,
		    min_increment = $5, end_time = $6, status = $7, winner_phone = $8,
		    updated_at = $9
		WHERE id = $1`,
		auction.AuctionID,
		auction.StartingPrice,
		auction.ReservePrice,
		auction.CurrentPrice,
		auction.MinIncrement,
		auction.EndTime,
		auction.Status,
		auction.WinnerPhone,
		auction.UpdatedAt,
	)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(auction.Bids))
	for _, b := range auction.Bids {
		kept = append(kept, b.BidID)
		_, err := tx.Exec(ctx, `
			INSERT INTO bids (id, auction_id, bidder_name, phone_number, amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			b.BidID, b.AuctionID, b.BidderName, b.PhoneNumber, b.Amount, b.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	if len(kept) == 0 {
		_, err = tx.Exec(ctx, `DELETE FROM bids WHERE auction_id = $1`, auction.AuctionID)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM bids WHERE auction_id = $1 AND id <> ALL($2)`, auction.AuctionID, kept)
	}
	return err
}

type rowScanner interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) scanAuction(ctx context.Context, q rowScanner, query string, args ...any) (model.Auction, error) {
	row := q.QueryRow(ctx, query, args...)
	auction, err := scanAuctionRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Auction{}, auctionerrors.ErrAuctionNotFound
	}
	return auction, err
}

func scanAuctionRow(row pgx.Row) (model.Auction, error) {
	var a model.Auction
	err := row.Scan(
		&a.AuctionID,
		&a.CarID,
		&a.StartingPrice,
		&a.ReservePrice,
		&a.CurrentPrice,
		&a.MinIncrement,
		&a.EndTime,
		&a.Status,
		&a.WinnerPhone,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (s *Store) loadBids(ctx context.Context, q rowScanner, auctionID string) ([]model.Bid, error) {
	rows, err := q.Query(ctx, `
		SELECT id, auction_id, bidder_name, phone_number, amount, created_at
		FROM bids WHERE auction_id = $1
		ORDER BY created_at ASC, id ASC`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderName, &b.PhoneNumber, &b.Amount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
