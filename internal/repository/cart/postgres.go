package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const cartColumns = `id::text, buyer_id, status, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE id::text = $1`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetActiveByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE buyer_id = $1 AND status = 'Active'`
	return r.fetchCart(ctx, q, buyerID)
}

func (r *postgresRepo) CreateActive(ctx context.Context, buyerID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (buyer_id, status)
VALUES ($1, 'Active')
ON CONFLICT (buyer_id) WHERE status = 'Active' DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, buyerID); err != nil {
		r.logger.Error("cart repo: create", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}
	return r.GetActiveByBuyer(ctx, buyerID)
}

func (r *postgresRepo) AddLineItem(ctx context.Context, cartID string, line domain.CartLine) error {
	if err := domain.ValidateQuantity(line.Quantity); err != nil {
		return err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, product_name, unit_price_cents, quantity)
VALUES ($1::uuid, $2, $3, $4, $5)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, cartID, line.ProductID, line.ProductName, line.UnitPriceCents, line.Quantity); err != nil {
		r.logger.Error("cart repo: add line", zap.String("cart_id", cartID), zap.String("product_id", line.ProductID), zap.Error(err))
		return err
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ChangeLineItemQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id::text = $2 AND cart_id::text = $3
`, quantity, lineID, cartID)
	if err != nil {
		r.logger.Error("cart repo: change quantity", zap.String("cart_id", cartID), zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLineItem(ctx context.Context, cartID, lineID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id::text = $1 AND cart_id::text = $2`, lineID, cartID)
	if err != nil {
		r.logger.Error("cart repo: remove line", zap.String("cart_id", cartID), zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetStatus(ctx context.Context, cartID string, status domain.CartStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE carts SET status = $1, updated_at = now() WHERE id::text = $2`, string(status), cartID)
	if err != nil {
		r.logger.Error("cart repo: set status", zap.String("cart_id", cartID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CompleteCheckout(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET status = 'CheckedOut', updated_at = now()
WHERE id::text = $1 AND status = 'Active'
`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id::text = $1`, cartID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("cart repo: complete checkout", zap.String("cart_id", cartID), zap.Error(err))
		return err
	}
	r.logger.Info("cart repo: checked out", zap.String("cart_id", cartID))
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	var status string
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.BuyerID,
		&status,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("cart repo: fetch", zap.Error(err))
		return nil, err
	}
	cart.Status = domain.CartStatus(status)

	const linesQuery = `
SELECT id::text, cart_id::text, product_id, product_name, unit_price_cents, quantity, added_at
FROM cart_lines
WHERE cart_id = $1::uuid
ORDER BY added_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.ProductName,
			&line.UnitPriceCents,
			&line.Quantity,
			&line.AddedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id::text = $1`, cartID)
	return err
}
