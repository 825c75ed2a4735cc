// Package repository implements the data access layer over GORM and Redis.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn picks the transaction handle when one is active, the base connection
// otherwise, always bound to the request context.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// TxManager runs a function inside a single database transaction.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over the given connection.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction opens a transaction, runs fn with it, and commits if fn
// returns nil or rolls back otherwise.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
