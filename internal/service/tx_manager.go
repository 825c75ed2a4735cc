package service

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a function inside one database transaction. The bulk
// import keeps a single transaction open for the whole batch so that any
// row failure rolls everything back.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
