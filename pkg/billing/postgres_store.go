package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore returns a SubscriptionStore backed by Postgres.
// Concurrency control relies on the subscriptions.version column: every
// Update is fenced by the version the caller read, so two writers racing
// on the same row cannot both commit.
func NewPostgresStore(db *pgxpool.Pool) SubscriptionStore {
	if db == nil {
		panic("billing: pgx pool is required")
	}
	return &postgresStore{db: db}
}

const subscriptionColumns = `id, account_id, plan_id, status, last_verified_payment_id, renews_at, created_at, updated_at, version`

func (s *postgresStore) Get(ctx context.Context, id string) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

func (s *postgresStore) GetBillableByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = $1 AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1`
	return s.scanOne(s.db.QueryRow(ctx, query, accountID))
}

func (s *postgresStore) Create(ctx context.Context, sub *Subscription) error {
	query := `INSERT INTO subscriptions
		(id, account_id, plan_id, status, last_verified_payment_id, renews_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)`

	_, err := s.db.Exec(ctx, query,
		sub.ID, sub.AccountID, sub.PlanID, sub.Status,
		sub.LastVerifiedPaymentID, sub.RenewsAt, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	sub.Version = 1
	return nil
}

func (s *postgresStore) Update(ctx context.Context, sub *Subscription) error {
	query := `UPDATE subscriptions SET
			plan_id = $2,
			status = $3,
			last_verified_payment_id = $4,
			renews_at = $5,
			updated_at = $6,
			version = version + 1
		WHERE id = $1 AND version = $7`

	tag, err := s.db.Exec(ctx, query,
		sub.ID, sub.PlanID, sub.Status,
		sub.LastVerifiedPaymentID, sub.RenewsAt, sub.UpdatedAt, sub.Version)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or another writer bumped the version.
		if _, getErr := s.Get(ctx, sub.ID); getErr != nil {
			return getErr
		}
		return ErrVersionConflict
	}
	sub.Version++
	return nil
}

func (s *postgresStore) scanOne(row pgx.Row) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.ID, &sub.AccountID, &sub.PlanID, &sub.Status,
		&sub.LastVerifiedPaymentID, &sub.RenewsAt,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownSubscription
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &sub, nil
}
