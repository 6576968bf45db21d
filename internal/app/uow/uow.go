package uow

import (
	"context"

	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	domainunit "staykeeper/internal/domain/unit"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// engine assumes writes are durable once Commit returns.
type UnitOfWork interface {
	Units() domainunit.Repository
	Bookings() domainbooking.Repository
	Folios() domainledger.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
