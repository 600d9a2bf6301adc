package database

import "errors"

var (
	// ErrNotReady indicates the startup ping failed.
	ErrNotReady = errors.New("database not ready")
	// ErrSchemaMissing indicates migrations have not been applied.
	ErrSchemaMissing = errors.New("database schema missing")
)
