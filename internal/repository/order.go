package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bloomshop/internal/entity"
	"bloomshop/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type OrderRepository struct {
	db *postgres.Postgres
}

func NewOrderRepository(db *postgres.Postgres) *OrderRepository {
	return &OrderRepository{db}
}

func (r *OrderRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	order *entity.Order,
) (*entity.Order, error) {
	const op = "repository.order.Create"

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal customer: %w", op, err)
	}

	query := r.db.Builder.Insert(`"orders"`).
		Columns("order_uid", "amount", "currency", "status", "payment_id", "payment_provider", "promo_code", "customer", "created_at", "updated_at").
		Values(
			order.ID,
			order.Amount,
			order.Currency,
			order.Status,
			order.PaymentID,
			order.PaymentProvider,
			order.PromoCode,
			customerJSON,
			order.CreatedAt,
			order.UpdatedAt,
		).
		Suffix("RETURNING order_uid, created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	err = queryExecuter.QueryRow(ctx, sql, args...).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, entity.ErrConflictingData
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	if err := r.createItems(ctx, queryExecuter, order.ID, order.Items); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) createItems(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	orderUID uuid.UUID,
	items []*entity.Item,
) error {
	const op = "repository.order.createItems"

	query := r.db.Builder.Insert("order_items").
		Columns("order_uid", "product_id", "name", "price", "quantity", "variant", "path")

	for _, item := range items {
		query = query.Values(
			orderUID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.Variant,
			item.Path,
		)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err = queryExecuter.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (r *OrderRepository) GetByID(
	ctx context.Context,
	orderUID uuid.UUID,
) (*entity.Order, error) {
	const op = "repository.order.GetByID"

	query := r.db.Builder.
		Select("order_uid", "amount", "currency", "status", "payment_id", "payment_provider", "promo_code", "customer", "created_at", "updated_at").
		From(`"orders"`).
		Where(squirrel.Eq{"order_uid": orderUID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Order{}
	var customerJSON []byte
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.ID,
		&result.Amount,
		&result.Currency,
		&result.Status,
		&result.PaymentID,
		&result.PaymentProvider,
		&result.PromoCode,
		&customerJSON,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	result.Customer = &entity.Customer{}
	if err = json.Unmarshal(customerJSON, result.Customer); err != nil {
		return nil, fmt.Errorf("%s: unmarshal customer: %w", op, err)
	}

	items, err := r.getItems(ctx, orderUID)
	if err != nil {
		return nil, err
	}
	result.Items = items

	return result, nil
}

func (r *OrderRepository) getItems(
	ctx context.Context,
	orderUID uuid.UUID,
) ([]*entity.Item, error) {
	const op = "repository.order.getItems"

	query := r.db.Builder.
		Select("product_id", "name", "price", "quantity", "variant", "path").
		From("order_items").
		Where(squirrel.Eq{"order_uid": orderUID}).
		OrderBy("id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		item := &entity.Item{}
		if err = rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.Variant,
			&item.Path,
		); err != nil {
			return nil, fmt.Errorf("%s: row scan: %w", op, err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return items, nil
}

// UpdateStatusIf moves an order to a new status only if its current status
// is in the allowed set, as a single conditional UPDATE. This is the atomic
// read-modify-write that both confirmation paths (gateway webhook and client
// poller fallback) race through: of two concurrent callers at most one sees
// applied=true.
//
// paymentID and provider, when non-empty, are recorded alongside the
// transition (the initiated event carries them).
func (r *OrderRepository) UpdateStatusIf(
	ctx context.Context,
	orderUID uuid.UUID,
	from []entity.OrderStatus,
	to entity.OrderStatus,
	paymentID, provider string,
) (bool, error) {
	const op = "repository.order.UpdateStatusIf"

	query := r.db.Builder.Update(`"orders"`).
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"order_uid": orderUID, "status": from})

	if paymentID != "" {
		query = query.Set("payment_id", paymentID)
	}
	if provider != "" {
		query = query.Set("payment_provider", provider)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("%s: exec: %w", op, err)
	}

	return tag.RowsAffected() == 1, nil
}
