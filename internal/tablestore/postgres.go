package tablestore

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres stores entities in the table_entities jsonb table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresStore{pool: pool, logger: logger}
}

func (s *postgresStore) Get(ctx context.Context, table, pk, rk string) (*Entity, error) {
	const q = `
SELECT partition_key, row_key, etag, updated_at, data
FROM table_entities
WHERE table_name = $1 AND partition_key = $2 AND row_key = $3
`
	var e Entity
	var data []byte
	err := s.pool.QueryRow(ctx, q, table, pk, rk).Scan(&e.PartitionKey, &e.RowKey, &e.ETag, &e.Timestamp, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("table store: get", zap.String("table", table), zap.String("row_key", rk), zap.Error(err))
		return nil, err
	}
	e.Data = data
	return &e, nil
}

func (s *postgresStore) List(ctx context.Context, table, pk string) ([]Entity, error) {
	const q = `
SELECT partition_key, row_key, etag, updated_at, data
FROM table_entities
WHERE table_name = $1 AND partition_key = $2
ORDER BY row_key
`
	rows, err := s.pool.Query(ctx, q, table, pk)
	if err != nil {
		s.logger.Error("table store: list", zap.String("table", table), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		var data []byte
		if err := rows.Scan(&e.PartitionKey, &e.RowKey, &e.ETag, &e.Timestamp, &data); err != nil {
			return nil, err
		}
		e.Data = data
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *postgresStore) Insert(ctx context.Context, table string, e Entity) (*Entity, error) {
	const q = `
INSERT INTO table_entities (table_name, partition_key, row_key, etag, data)
VALUES ($1, $2, $3, $4, $5::jsonb)
RETURNING updated_at
`
	e.ETag = newETag()
	err := s.pool.QueryRow(ctx, q, table, e.PartitionKey, e.RowKey, e.ETag, string(e.Data)).Scan(&e.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		s.logger.Error("table store: insert", zap.String("table", table), zap.String("row_key", e.RowKey), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

func (s *postgresStore) Update(ctx context.Context, table string, e Entity, expectedETag string) (*Entity, error) {
	const q = `
UPDATE table_entities
SET data = $4::jsonb, etag = $5, updated_at = now()
WHERE table_name = $1 AND partition_key = $2 AND row_key = $3
  AND ($6 = '*' OR etag = $6)
RETURNING updated_at
`
	newTag := newETag()
	err := s.pool.QueryRow(ctx, q, table, e.PartitionKey, e.RowKey, string(e.Data), newTag, expectedETag).Scan(&e.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.Get(ctx, table, e.PartitionKey, e.RowKey); getErr != nil {
				return nil, getErr
			}
			return nil, ErrConflict
		}
		s.logger.Error("table store: update", zap.String("table", table), zap.String("row_key", e.RowKey), zap.Error(err))
		return nil, err
	}
	e.ETag = newTag
	return &e, nil
}

func (s *postgresStore) Delete(ctx context.Context, table, pk, rk string) error {
	const q = `DELETE FROM table_entities WHERE table_name = $1 AND partition_key = $2 AND row_key = $3`
	tag, err := s.pool.Exec(ctx, q, table, pk, rk)
	if err != nil {
		s.logger.Error("table store: delete", zap.String("table", table), zap.String("row_key", rk), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
