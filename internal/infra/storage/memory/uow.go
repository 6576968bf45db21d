package memory

import (
	"context"
	"errors"

	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	domainunit "staykeeper/internal/domain/unit"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UnitsRepo   domainunit.Repository
	BookingRepo domainbooking.Repository
	FolioRepo   domainledger.Repository
}

// NewFactory builds a factory over a fresh set of empty repositories.
func NewFactory() Factory {
	return Factory{
		UnitsRepo:   NewUnitRepository(),
		BookingRepo: NewBookingRepository(),
		FolioRepo:   NewFolioRepository(),
	}
}

// Begin starts a staged transaction boundary: saves buffer inside the unit and
// hit the backing repositories only on Commit, all or nothing.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UnitsRepo == nil || f.BookingRepo == nil || f.FolioRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{}
	u.units = &stagedUnits{backing: f.UnitsRepo, unit: u}
	u.bookings = &stagedBookings{backing: f.BookingRepo, unit: u}
	u.folios = &stagedFolios{backing: f.FolioRepo, unit: u}
	return u, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores. Saves accumulate as
// pending writes; Commit replays them in order, so a failure mid-handler never
// leaves a booking persisted without its folio (or the reverse).
type Unit struct {
	units    *stagedUnits
	bookings *stagedBookings
	folios   *stagedFolios

	pending []func(ctx context.Context) error
	done    bool
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

func (u *Unit) stage(write func(ctx context.Context) error) {
	u.pending = append(u.pending, write)
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	for _, write := range u.pending {
		if err := write(ctx); err != nil {
			return err
		}
	}
	u.pending = nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done = true
	u.pending = nil
	return nil
}

type stagedUnits struct {
	backing domainunit.Repository
	unit    *Unit
	written map[domainunit.UnitID]*domainunit.Unit
}

func (s *stagedUnits) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	if staged, ok := s.written[id]; ok {
		return staged, nil
	}
	return s.backing.ByID(ctx, id)
}

func (s *stagedUnits) Save(ctx context.Context, u *domainunit.Unit) error {
	if s.written == nil {
		s.written = make(map[domainunit.UnitID]*domainunit.Unit)
	}
	s.written[u.ID] = u
	s.unit.stage(func(ctx context.Context) error { return s.backing.Save(ctx, u) })
	return nil
}

type stagedBookings struct {
	backing domainbooking.Repository
	unit    *Unit
	written map[domainbooking.BookingID]*domainbooking.Booking
}

func (s *stagedBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if staged, ok := s.written[id]; ok {
		return staged, nil
	}
	return s.backing.ByID(ctx, id)
}

func (s *stagedBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	if s.written == nil {
		s.written = make(map[domainbooking.BookingID]*domainbooking.Booking)
	}
	s.written[b.ID] = b
	s.unit.stage(func(ctx context.Context) error { return s.backing.Save(ctx, b) })
	return nil
}

func (s *stagedBookings) ListBlockingByUnit(ctx context.Context, id domainunit.UnitID) ([]*domainbooking.Booking, error) {
	return s.backing.ListBlockingByUnit(ctx, id)
}

type stagedFolios struct {
	backing domainledger.Repository
	unit    *Unit
	written map[domainbooking.BookingID]*domainledger.Folio
}

func (s *stagedFolios) ByBooking(ctx context.Context, id domainbooking.BookingID) (*domainledger.Folio, error) {
	if staged, ok := s.written[id]; ok {
		return staged, nil
	}
	return s.backing.ByBooking(ctx, id)
}

func (s *stagedFolios) Save(ctx context.Context, f *domainledger.Folio) error {
	if s.written == nil {
		s.written = make(map[domainbooking.BookingID]*domainledger.Folio)
	}
	s.written[f.BookingID] = f
	s.unit.stage(func(ctx context.Context) error { return s.backing.Save(ctx, f) })
	return nil
}
