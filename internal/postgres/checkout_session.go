// Package postgres holds the PostgreSQL-backed stores. The storefront keeps
// almost no state of its own; what it does persist (checkout sessions) lives
// here.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dstrand/vitrine/internal/checkout"
	"github.com/dstrand/vitrine/internal/domain"
)

// CheckoutSessionStore implements checkout.Store using PostgreSQL.
type CheckoutSessionStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CheckoutSessionStore implements checkout.Store.
var _ checkout.Store = (*CheckoutSessionStore)(nil)

// NewCheckoutSessionStore creates a new PostgreSQL-backed session store.
func NewCheckoutSessionStore(pool *pgxpool.Pool) *CheckoutSessionStore {
	return &CheckoutSessionStore{pool: pool}
}

// Save upserts a checkout session by ID.
func (s *CheckoutSessionStore) Save(ctx context.Context, session *checkout.Session) error {
	const query = `
		INSERT INTO checkout_sessions (
			id, cart_session, state, payment_method,
			order_id, invoice_no, payment_intent_id, client_secret,
			failure_message, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			state             = EXCLUDED.state,
			order_id          = EXCLUDED.order_id,
			invoice_no        = EXCLUDED.invoice_no,
			payment_intent_id = EXCLUDED.payment_intent_id,
			client_secret     = EXCLUDED.client_secret,
			failure_message   = EXCLUDED.failure_message,
			updated_at        = now()
	`

	_, err := s.pool.Exec(ctx, query,
		session.ID,
		session.CartSession,
		string(session.State),
		string(session.PaymentMethod),
		session.OrderID,
		session.InvoiceNo,
		session.PaymentIntentID,
		session.ClientSecret,
		session.FailureMessage,
	)
	if err != nil {
		return domain.Internal(err, "checkout_session.save", "failed to save checkout session")
	}
	return nil
}

// Get loads a checkout session by ID.
func (s *CheckoutSessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	const query = `
		SELECT id, cart_session, state, payment_method,
		       order_id, invoice_no, payment_intent_id, client_secret,
		       failure_message, created_at, updated_at
		FROM checkout_sessions
		WHERE id = $1
	`

	var (
		session checkout.Session
		state   string
		method  string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.CartSession,
		&state,
		&method,
		&session.OrderID,
		&session.InvoiceNo,
		&session.PaymentIntentID,
		&session.ClientSecret,
		&session.FailureMessage,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckoutSessionNotFound
		}
		return nil, domain.Internal(err, "checkout_session.get", "failed to get checkout session")
	}

	session.State = domain.CheckoutState(state)
	session.PaymentMethod = domain.PaymentMethod(method)
	return &session, nil
}
