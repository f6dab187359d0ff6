package repository

import (
	"context"
	"errors"
	"fmt"

	"bloomshop/internal/entity"
	"bloomshop/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type ZoneRepository struct {
	db *postgres.Postgres
}

func NewZoneRepository(db *postgres.Postgres) *ZoneRepository {
	return &ZoneRepository{db}
}

func (r *ZoneRepository) GetByCode(
	ctx context.Context,
	code string,
) (*entity.DeliveryZone, error) {
	const op = "repository.zone.GetByCode"

	query := r.db.Builder.
		Select("code", "name", "fee_under_threshold", "free_from_threshold").
		From("delivery_zones").
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.DeliveryZone{}
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.Code,
		&result.Name,
		&result.FeeUnderThreshold,
		&result.FreeFromThreshold,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return result, nil
}

func (r *ZoneRepository) List(ctx context.Context) ([]*entity.DeliveryZone, error) {
	const op = "repository.zone.List"

	query := r.db.Builder.
		Select("code", "name", "fee_under_threshold", "free_from_threshold").
		From("delivery_zones").
		OrderBy("code")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var zones []*entity.DeliveryZone
	for rows.Next() {
		zone := &entity.DeliveryZone{}
		if err = rows.Scan(
			&zone.Code,
			&zone.Name,
			&zone.FeeUnderThreshold,
			&zone.FreeFromThreshold,
		); err != nil {
			return nil, fmt.Errorf("%s: row scan: %w", op, err)
		}
		zones = append(zones, zone)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return zones, nil
}
