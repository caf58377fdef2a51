package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"ward-census/internal/config"
)

// NewPostgresDB 创建PostgreSQL数据库连接
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Schema creates the tables the repositories read and write. Every statement
// is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS wards (
		ward_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		block      TEXT NOT NULL DEFAULT 'A'
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		doctor_id  TEXT PRIMARY KEY,
		full_name  TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS admissions (
		record_id                TEXT PRIMARY KEY,
		seq                      BIGSERIAL,
		hist_number              TEXT NOT NULL DEFAULT '',
		last_name                TEXT NOT NULL DEFAULT '',
		first_name               TEXT NOT NULL DEFAULT '',
		patronymic               TEXT NOT NULL DEFAULT '',
		birth_date               TEXT NOT NULL DEFAULT '',
		phone                    TEXT NOT NULL DEFAULT '',
		address                  TEXT NOT NULL DEFAULT '',
		occupation               TEXT NOT NULL DEFAULT '',
		arrival_date             TEXT NOT NULL DEFAULT '',
		arrival_time             TEXT NOT NULL DEFAULT '',
		ward_id                  TEXT REFERENCES wards(ward_id) ON DELETE SET NULL,
		doctor_id                TEXT REFERENCES doctors(doctor_id) ON DELETE SET NULL,
		discharge_datetime       TEXT,
		caregiver_exists         BOOLEAN NOT NULL DEFAULT FALSE,
		caregiver_fullname       TEXT NOT NULL DEFAULT '',
		caregiver_ward_id        TEXT REFERENCES wards(ward_id) ON DELETE SET NULL,
		caregiver_arrival_date   TEXT,
		caregiver_departure_date TEXT,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_admissions_hist_number ON admissions (hist_number)`,
	`CREATE INDEX IF NOT EXISTS idx_admissions_last_name ON admissions (lower(last_name))`,
}

// EnsureSchema applies Schema in order.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
