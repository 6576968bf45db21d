package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	domainunit "staykeeper/internal/domain/unit"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UnitsRepo   domainunit.Repository
	BookingRepo domainbooking.Repository
	FolioRepo   domainledger.Repository
}

// NewFactory builds a factory with repositories over the given database.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:          db,
		UnitsRepo:   NewUnitRepository(db),
		BookingRepo: NewBookingRepository(db),
		FolioRepo:   NewFolioRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		units:    f.UnitsRepo,
		bookings: f.BookingRepo,
		folios:   f.FolioRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	units    domainunit.Repository
	bookings domainbooking.Repository
	folios   domainledger.Repository
}

func (u *Unit) Units() domainunit.Repository {
	return u.units
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Folios() domainledger.Repository {
	return u.folios
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
