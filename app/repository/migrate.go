package repository

import (
	"context"
	"fmt"
)

// api_key compares byte for byte on every dialect; MySQL's default collations ignore case.
// seq records insertion order and breaks created_at ties.
var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		seq BIGINT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		api_key VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		description TEXT NOT NULL,
		usage_count BIGINT NOT NULL DEFAULT 0,
		usage_limit BIGINT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_api_keys_seq (seq),
		UNIQUE KEY uq_api_keys_api_key (api_key),
		KEY idx_api_keys_created_at (created_at, seq)
	)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		id VARCHAR(64) PRIMARY KEY,
		seq BIGSERIAL NOT NULL UNIQUE,
		name TEXT NOT NULL,
		api_key TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		usage_count BIGINT NOT NULL DEFAULT 0 CHECK (usage_count >= 0),
		usage_limit BIGINT CHECK (usage_limit >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_created_at ON api_keys (created_at, seq)`,
}

// Migrate creates the api_keys table for the given dialect. It is safe to run repeatedly.
func Migrate(ctx context.Context, db DBTX, dialect Dialect) error {
	migrations := mysqlMigrations
	if dialect == DialectPostgres {
		migrations = postgresMigrations
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
