package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
)

type APIKeyRepository struct {
	db      DBTX
	dialect Dialect
	timeout time.Duration
}

func NewAPIKeyRepository(db DBTX, dialect Dialect, timeout time.Duration) *APIKeyRepository {
	return &APIKeyRepository{db: db, dialect: dialect, timeout: timeout}
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*entity.APIKey, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, api_key, description, usage_count, usage_limit, created_at
		FROM api_keys
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query))
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()

	keys := make([]*entity.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows.Scan)
		if err != nil {
			return nil, storageError(err)
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError(err)
	}

	return keys, nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*entity.APIKey, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.findOne(ctx, `
		SELECT id, name, api_key, description, usage_count, usage_limit, created_at
		FROM api_keys WHERE id = ?
	`, id)
}

func (r *APIKeyRepository) FindByValue(ctx context.Context, value string) (*entity.APIKey, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.findOne(ctx, `
		SELECT id, name, api_key, description, usage_count, usage_limit, created_at
		FROM api_keys WHERE api_key = ?
	`, value)
}

func (r *APIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	// Both dialects store microsecond precision.
	key.CreatedAt = key.CreatedAt.Truncate(time.Microsecond)

	query := `
		INSERT INTO api_keys (id, name, api_key, description, usage_count, usage_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		key.ID,
		key.Name,
		key.Value,
		key.Description,
		key.UsageCount,
		key.UsageLimit,
		key.CreatedAt,
	)
	return storageError(err)
}

// Update replaces the mutable fields of the record identified by key.ID and returns
// the stored row, or nil when no such record exists.
func (r *APIKeyRepository) Update(ctx context.Context, key *entity.APIKey) (*entity.APIKey, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE api_keys SET
			name = ?,
			api_key = ?,
			description = ?,
			usage_limit = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		key.Name,
		key.Value,
		key.Description,
		key.UsageLimit,
		key.ID,
	); err != nil {
		return nil, storageError(err)
	}

	// MySQL reports zero affected rows for no-op updates, so existence is read back.
	return r.findOne(ctx, `
		SELECT id, name, api_key, description, usage_count, usage_limit, created_at
		FROM api_keys WHERE id = ?
	`, key.ID)
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM api_keys WHERE id = ?`), id)
	if err != nil {
		return 0, storageError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, storageError(err)
	}
	return rows, nil
}

func (r *APIKeyRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *APIKeyRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.APIKey, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...)
	key, err := scanAPIKey(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageError(err)
	}

	return key, nil
}

type rowScanner func(dest ...interface{}) error

func scanAPIKey(scan rowScanner) (*entity.APIKey, error) {
	key := &entity.APIKey{}
	if err := scan(
		&key.ID,
		&key.Name,
		&key.Value,
		&key.Description,
		&key.UsageCount,
		&key.UsageLimit,
		&key.CreatedAt,
	); err != nil {
		return nil, err
	}

	return key, nil
}
